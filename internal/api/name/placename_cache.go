package name

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-place-lookup/app/geocache"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// placenameIndex is the merged-result cache namespace, one level above the
// per-provider raw-response caches.
const placenameIndex = "placename_cache"

// PlacenameCache serves whole merged results so bulk requests can skip
// provider resolution entirely for coordinates seen before.
type PlacenameCache struct {
	logger *slog.Logger
	store  geocache.Store
}

func NewPlacenameCache(store geocache.Store, logger *slog.Logger) *PlacenameCache {
	return &PlacenameCache{
		logger: logger,
		store:  store,
	}
}

// Lookup fetches cached merged results for every coordinate in one batched
// call. The result aligns to the input; a miss is a nil entry. An error
// here means the store itself is unreachable and is the one cache failure
// that propagates.
func (p *PlacenameCache) Lookup(ctx context.Context, coords []types.Coordinate, distanceMeters int) ([]*types.Placename, error) {
	queries := make([]geocache.Query, len(coords))
	for i, coord := range coords {
		queries[i] = geocache.Query{Index: placenameIndex, Coord: coord}
	}

	raws, err := p.store.BulkLookup(ctx, queries, distanceMeters)
	if err != nil {
		return nil, fmt.Errorf("placename cache lookup: %w", err)
	}

	placenames := make([]*types.Placename, len(coords))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		var placename types.Placename
		if err := json.Unmarshal(raw, &placename); err != nil {
			p.logger.WarnContext(ctx, "undecodable cached placename", slog.Any("error", err))
			continue
		}
		placenames[i] = &placename
	}
	return placenames, nil
}

// Save stamps the placename with its coordinate and creation time and
// writes it through. Best-effort: callers run it detached and only the log
// sees a failure.
func (p *PlacenameCache) Save(ctx context.Context, coord types.Coordinate, placename types.Placename) error {
	placename.StampForPersistence(coord, time.Now().UTC())

	raw, err := json.Marshal(placename)
	if err != nil {
		return fmt.Errorf("encode placename: %w", err)
	}
	if err := p.store.Persist(ctx, placenameIndex, coord, raw); err != nil {
		return fmt.Errorf("persist placename: %w", err)
	}
	return nil
}
