package name

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-place-lookup/app/observability/metrics"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the resolution contract exposed to the HTTP layer.
type Service interface {
	ResolveOne(ctx context.Context, coord types.Coordinate, distanceMeters int, cacheOnly, includeCountryName bool) (types.Placename, error)
	ResolveBulk(ctx context.Context, coords []types.Coordinate, distanceMeters int, cacheOnly, includeCountryName bool) ([]types.Placename, error)
	Diagnose(ctx context.Context, coord types.Coordinate, distanceMeters int) (map[string]any, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	orchestrator   *Orchestrator
	placenames     *PlacenameCache
	requestTimeout time.Duration
}

func NewServiceImpl(orchestrator *Orchestrator, placenames *PlacenameCache, requestTimeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		orchestrator:   orchestrator,
		placenames:     placenames,
		requestTimeout: requestTimeout,
	}
}

// ResolveOne fans out to every provider, merges the candidates and writes
// the merged result through to the placename cache in the background.
func (s *ServiceImpl) ResolveOne(ctx context.Context, coord types.Coordinate, distanceMeters int, cacheOnly, includeCountryName bool) (types.Placename, error) {
	ctx, span := otel.Tracer("NameService").Start(ctx, "ResolveOne", trace.WithAttributes(
		attribute.Float64("coord.lat", coord.Latitude),
		attribute.Float64("coord.lon", coord.Longitude),
		attribute.Bool("cache_only", cacheOnly),
	))
	defer span.End()
	defer s.record(ctx, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	candidates := s.orchestrator.ResolveAll(ctx, coord, distanceMeters, cacheOnly)
	merged := Merge(candidates, includeCountryName)

	if !merged.IsEmpty() {
		s.saveDetached(ctx, coord, merged)
	}

	span.SetStatus(codes.Ok, "resolved")
	return merged, nil
}

// ResolveBulk checks the merged-result cache first and only sends the
// missing coordinates through full resolution. Cache hits survive even when
// a sibling item in the batch misses. Per-item failures degrade to sparse
// placenames; the only hard failure is an unreachable cache store.
func (s *ServiceImpl) ResolveBulk(ctx context.Context, coords []types.Coordinate, distanceMeters int, cacheOnly, includeCountryName bool) ([]types.Placename, error) {
	ctx, span := otel.Tracer("NameService").Start(ctx, "ResolveBulk", trace.WithAttributes(
		attribute.Int("coords", len(coords)),
		attribute.Bool("cache_only", cacheOnly),
	))
	defer span.End()
	defer s.record(ctx, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	cached, err := s.placenames.Lookup(ctx, coords, distanceMeters)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "bulk placename pre-check failed", slog.Any("error", err))
		return nil, err
	}

	var missing []types.Coordinate
	var missingAt []int
	for i, hit := range cached {
		if hit == nil {
			missing = append(missing, coords[i])
			missingAt = append(missingAt, i)
		}
	}

	results := make([]types.Placename, len(coords))
	for i, hit := range cached {
		if hit != nil {
			results[i] = *hit
		}
	}

	if len(missing) > 0 {
		resolved := s.orchestrator.ResolveBulk(ctx, missing, distanceMeters, cacheOnly)
		for j, candidates := range resolved {
			merged := Merge(candidates, includeCountryName)
			results[missingAt[j]] = merged
			if !merged.IsEmpty() {
				s.saveDetached(ctx, missing[j], merged)
			}
		}
	}

	span.SetAttributes(attribute.Int("cache_hits", len(coords)-len(missing)))
	span.SetStatus(codes.Ok, "resolved")
	return results, nil
}

// Diagnose exposes every provider's individual answer next to the merged
// one. Debugging aid for tuning the merge rules.
func (s *ServiceImpl) Diagnose(ctx context.Context, coord types.Coordinate, distanceMeters int) (map[string]any, error) {
	ctx, span := otel.Tracer("NameService").Start(ctx, "Diagnose")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	candidates := s.orchestrator.ResolveAll(ctx, coord, distanceMeters, false)

	response := make(map[string]any, 2*len(candidates)+1)
	for provider, candidate := range candidates {
		response[provider] = candidate.Placename
		if candidate.Raw != nil {
			response[provider+"_raw"] = candidate.Raw
		}
	}
	response["best"] = Merge(candidates, false)
	return response, nil
}

func (s *ServiceImpl) saveDetached(ctx context.Context, coord types.Coordinate, placename types.Placename) {
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := s.placenames.Save(pctx, coord, placename); err != nil {
			s.logger.Warn("placename write-through failed", slog.Any("error", err))
		}
	}()
}

func (s *ServiceImpl) record(ctx context.Context, start time.Time) {
	if !metrics.Initialized() {
		return
	}
	m := metrics.Get()
	m.ResolveRequestsTotal.Add(ctx, 1)
	m.ResolveDurationSeconds.Record(ctx, time.Since(start).Seconds())
}
