package name

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-place-lookup/app/geocache"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// liveFetchConcurrency bounds how many upstream fetches a bulk resolution
// may run at once.
const liveFetchConcurrency = 16

// Orchestrator fans a resolution out across every configured provider and
// joins the results. A provider failure contributes an empty candidate and
// never fails the join.
type Orchestrator struct {
	logger    *slog.Logger
	resolvers []*Resolver
	cache     geocache.Store
}

func NewOrchestrator(resolvers []*Resolver, cache geocache.Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		resolvers: resolvers,
		cache:     cache,
	}
}

// ResolveAll launches one resolver per provider concurrently and waits for
// all of them.
func (o *Orchestrator) ResolveAll(ctx context.Context, coord types.Coordinate, distanceMeters int, cacheOnly bool) Candidates {
	results := make([]Candidate, len(o.resolvers))

	var g errgroup.Group
	for i, r := range o.resolvers {
		g.Go(func() error {
			candidate, err := r.Resolve(ctx, coord, distanceMeters, cacheOnly)
			if err != nil {
				o.logger.DebugContext(ctx, "provider resolution yielded nothing",
					slog.String("provider", r.adapter.Name()), slog.Any("error", err))
			}
			results[i] = candidate
			return nil
		})
	}
	_ = g.Wait()

	candidates := make(Candidates, len(o.resolvers))
	for i, r := range o.resolvers {
		candidates[r.adapter.Name()] = results[i]
	}
	return candidates
}

// ResolveBulk resolves many coordinates with one batched cache round trip
// covering every (coordinate, provider) pair. Only the pairs the cache
// missed go to the live-fetch path, concurrently. Results align to the
// input coordinate order; the per-coordinate maps are keyed by provider.
func (o *Orchestrator) ResolveBulk(ctx context.Context, coords []types.Coordinate, distanceMeters int, cacheOnly bool) []Candidates {
	queries := make([]geocache.Query, 0, len(coords)*len(o.resolvers))
	for _, coord := range coords {
		for _, r := range o.resolvers {
			queries = append(queries, geocache.Query{Index: r.adapter.CacheIndex(), Coord: coord})
		}
	}

	raws, err := o.cache.BulkLookup(ctx, queries, distanceMeters)
	if err != nil {
		// Degrade to all-miss; the live path below still works.
		o.logger.ErrorContext(ctx, "bulk cache lookup failed", slog.Any("error", err))
		raws = make([]json.RawMessage, len(queries))
	}

	// Flat, pre-sized slice so concurrent live fetches never share a map.
	pairResults := make([]Candidate, len(queries))

	g := errgroup.Group{}
	g.SetLimit(liveFetchConcurrency)

	idx := 0
	for _, coord := range coords {
		for _, r := range o.resolvers {
			raw := raws[idx]
			slot := idx
			idx++

			if raw != nil {
				pairResults[slot] = r.toCandidate(ctx, coord, r.adapter.PostCache(raw))
				continue
			}
			if cacheOnly {
				continue
			}

			g.Go(func() error {
				pairResults[slot] = r.resolveLive(ctx, coord, distanceMeters)
				return nil
			})
		}
	}
	_ = g.Wait()

	// Re-impose the caller's ordering: coordinate index, then provider.
	results := make([]Candidates, len(coords))
	idx = 0
	for i := range coords {
		results[i] = make(Candidates, len(o.resolvers))
		for _, r := range o.resolvers {
			results[i][r.adapter.Name()] = pairResults[idx]
			idx++
		}
	}
	return results
}
