package name

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-place-lookup/app/geocache"
	"github.com/FACorreiaa/go-place-lookup/app/observability/metrics"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const persistTimeout = 10 * time.Second

// Resolver runs the cache-then-source-then-persist protocol for one
// adapter. Parse and transport failures are absorbed into an empty
// candidate here so a single provider can never abort a resolution.
type Resolver struct {
	logger  *slog.Logger
	adapter Adapter
	cache   geocache.Store
}

func NewResolver(adapter Adapter, cache geocache.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		logger:  logger,
		adapter: adapter,
		cache:   cache,
	}
}

// Resolve returns this provider's candidate for the coordinate. The only
// errors it surfaces are a miss or a store failure under cacheOnly, and a
// mis-wired adapter; everything else degrades to an empty candidate.
func (r *Resolver) Resolve(ctx context.Context, coord types.Coordinate, distanceMeters int, cacheOnly bool) (Candidate, error) {
	index := r.adapter.CacheIndex()
	if index == "" {
		// Every provider needs its own cache namespace.
		return Candidate{}, types.ErrNotImplemented
	}

	raw, err := r.cache.Lookup(ctx, index, coord, distanceMeters)
	switch {
	case err == nil:
		r.countCache(ctx, true)
		return r.toCandidate(ctx, coord, r.adapter.PostCache(raw)), nil

	case errors.Is(err, types.ErrNoMatches):
		r.countCache(ctx, false)
		if cacheOnly {
			return Candidate{}, types.ErrNoMatches
		}

	default:
		// Cache store trouble beyond a plain miss. A store outage should
		// not take the live path down with it, so treat it as a miss
		// unless the caller wanted cached data only.
		r.logger.ErrorContext(ctx, "cache lookup failed",
			slog.String("provider", r.adapter.Name()), slog.Any("error", err))
		if cacheOnly {
			return Candidate{}, err
		}
	}

	return r.resolveLive(ctx, coord, distanceMeters), nil
}

// resolveLive fetches from the upstream provider and persists the raw
// response in the background. The write is best-effort; its failure is
// logged and never reaches the caller.
func (r *Resolver) resolveLive(ctx context.Context, coord types.Coordinate, distanceMeters int) Candidate {
	if metrics.Initialized() {
		metrics.Get().ProviderFetchesTotal.Add(ctx, 1, metric.WithAttributes(r.providerAttr()))
	}

	raw, err := r.adapter.FetchSource(ctx, coord, distanceMeters)
	if err != nil {
		if metrics.Initialized() {
			metrics.Get().ProviderFailuresTotal.Add(ctx, 1, metric.WithAttributes(r.providerAttr()))
		}
		r.logger.WarnContext(ctx, "provider fetch failed",
			slog.String("provider", r.adapter.Name()), slog.Any("error", err))
		return Candidate{}
	}

	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := r.cache.Persist(pctx, r.adapter.CacheIndex(), coord, raw); err != nil {
			r.logger.Warn("cache persist failed",
				slog.String("provider", r.adapter.Name()), slog.Any("error", err))
		}
	}()

	return r.toCandidate(ctx, coord, raw)
}

// toCandidate normalizes a raw payload. A malformed payload yields an empty
// candidate, not an error.
func (r *Resolver) toCandidate(ctx context.Context, coord types.Coordinate, raw []byte) Candidate {
	placename, err := r.adapter.ToPlacename(coord, raw)
	if err != nil {
		r.logger.DebugContext(ctx, "provider payload not usable",
			slog.String("provider", r.adapter.Name()), slog.Any("error", err))
		return Candidate{}
	}
	return Candidate{Placename: placename, Raw: raw}
}

func (r *Resolver) countCache(ctx context.Context, hit bool) {
	if !metrics.Initialized() {
		return
	}
	if hit {
		metrics.Get().CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(r.providerAttr()))
	} else {
		metrics.Get().CacheMissesTotal.Add(ctx, 1, metric.WithAttributes(r.providerAttr()))
	}
}

func (r *Resolver) providerAttr() attribute.KeyValue {
	return attribute.String("provider", r.adapter.Name())
}
