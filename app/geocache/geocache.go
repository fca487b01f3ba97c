package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const defaultRetries = 5

// Query pairs a cache index with the coordinate to search near. Used by
// BulkLookup to cover many (coordinate, provider) pairs in one call.
type Query struct {
	Index string
	Coord types.Coordinate
}

// Store is the geo-indexed cache boundary. Reads are nearest-neighbor
// searches constrained to a radius, not exact-key lookups, so nearby
// requests share a cached answer. A miss is reported as types.ErrNoMatches.
type Store interface {
	Lookup(ctx context.Context, index string, coord types.Coordinate, radiusMeters int) (json.RawMessage, error)
	// BulkLookup resolves every query with a constant number of network
	// round trips. The result is aligned to the input; a miss is a nil entry.
	BulkLookup(ctx context.Context, queries []Query, radiusMeters int) ([]json.RawMessage, error)
	Persist(ctx context.Context, index string, coord types.Coordinate, raw json.RawMessage) error
}

var _ Store = (*RedisStore)(nil)

// RedisStore keeps one sorted set of geo points per index plus a hash of
// raw payloads keyed by the "lat,lon" member string. GEOSEARCH gives the
// nearest-within-radius semantics; writes overwrite by member.
type RedisStore struct {
	logger *slog.Logger
	rdb    *redis.Client
}

func NewRedisStore(rdb *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		logger: logger,
		rdb:    rdb,
	}
}

// NewRedisClient builds the client from configuration. Callers own Close.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg == nil || cfg.Repositories.Redis.Host == "" {
		return nil, fmt.Errorf("redis configuration is missing or invalid")
	}
	r := cfg.Repositories.Redis
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", r.Host, r.Port),
		Password: r.Password,
		DB:       r.DB,
	}), nil
}

// WaitForStore pings the cache store until it responds or retries run out.
func WaitForStore(ctx context.Context, rdb *redis.Client, logger *slog.Logger) bool {
	for attempts := 1; attempts <= defaultRetries; attempts++ {
		err := rdb.Ping(ctx).Err()
		if err == nil {
			logger.InfoContext(ctx, "Cache store connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.WarnContext(ctx, "Cache store ping failed, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", defaultRetries),
			slog.Duration("wait_duration", waitDuration),
			slog.String("error", err.Error()),
		)
		if attempts < defaultRetries {
			time.Sleep(waitDuration)
		}
	}
	logger.ErrorContext(ctx, "Cache store connection failed after multiple retries")
	return false
}

func (s *RedisStore) Lookup(ctx context.Context, index string, coord types.Coordinate, radiusMeters int) (json.RawMessage, error) {
	members, err := s.rdb.GeoSearch(ctx, geoKey(index), nearestQuery(coord, radiusMeters)).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search on %s: %w", index, err)
	}
	if len(members) == 0 {
		return nil, types.ErrNoMatches
	}

	raw, err := s.rdb.HGet(ctx, dataKey(index), members[0]).Result()
	if err == redis.Nil {
		// Geo point without a payload; treat as a miss rather than an error.
		return nil, types.ErrNoMatches
	}
	if err != nil {
		return nil, fmt.Errorf("payload fetch on %s: %w", index, err)
	}
	return json.RawMessage(raw), nil
}

func (s *RedisStore) BulkLookup(ctx context.Context, queries []Query, radiusMeters int) ([]json.RawMessage, error) {
	// First round trip: every GEOSEARCH in one pipeline.
	pipe := s.rdb.Pipeline()
	searches := make([]*redis.StringSliceCmd, len(queries))
	for i, q := range queries {
		searches[i] = pipe.GeoSearch(ctx, geoKey(q.Index), nearestQuery(q.Coord, radiusMeters))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("bulk geo search: %w", err)
	}

	// Second round trip: payloads for every hit, also pipelined.
	fetch := s.rdb.Pipeline()
	gets := make([]*redis.StringCmd, len(queries))
	for i, search := range searches {
		members, err := search.Result()
		if err != nil || len(members) == 0 {
			continue
		}
		gets[i] = fetch.HGet(ctx, dataKey(queries[i].Index), members[0])
	}
	if _, err := fetch.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("bulk payload fetch: %w", err)
	}

	results := make([]json.RawMessage, len(queries))
	for i, get := range gets {
		if get == nil {
			continue
		}
		raw, err := get.Result()
		if err != nil {
			continue
		}
		results[i] = json.RawMessage(raw)
	}
	return results, nil
}

// Persist writes the raw payload keyed by the exact coordinate, stamped with
// the location and retrieval time so entries can be re-fetched eventually.
// Callers are expected to run it detached; its failure never reaches a
// request path.
func (s *RedisStore) Persist(ctx context.Context, index string, coord types.Coordinate, raw json.RawMessage) error {
	member := memberFor(coord)

	pipe := s.rdb.Pipeline()
	pipe.GeoAdd(ctx, geoKey(index), &redis.GeoLocation{
		Name:      member,
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	})
	pipe.HSet(ctx, dataKey(index), member, string(withBookkeeping(raw, coord)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist to %s: %w", index, err)
	}
	return nil
}

// withBookkeeping adds the location geopoint and retrieval date to the
// payload. Non-object payloads are stored untouched.
func withBookkeeping(raw json.RawMessage, coord types.Coordinate) json.RawMessage {
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return raw
	}
	tree["location"] = map[string]float64{"lat": coord.Latitude, "lon": coord.Longitude}
	tree["date_retrieved"] = time.Now().UTC().Format("2006-01-02T15:04:05Z")

	updated, err := json.Marshal(tree)
	if err != nil {
		return raw
	}
	return updated
}

func nearestQuery(coord types.Coordinate, radiusMeters int) *redis.GeoSearchQuery {
	return &redis.GeoSearchQuery{
		Longitude:  coord.Longitude,
		Latitude:   coord.Latitude,
		Radius:     float64(radiusMeters),
		RadiusUnit: "m",
		Sort:       "ASC",
		Count:      1,
	}
}

func memberFor(coord types.Coordinate) string {
	return strconv.FormatFloat(coord.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(coord.Longitude, 'f', -1, 64)
}

func geoKey(index string) string {
	return "geocache:" + index
}

func dataKey(index string) string {
	return "geocache:" + index + ":data"
}
