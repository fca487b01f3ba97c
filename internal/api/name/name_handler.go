package name

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-place-lookup/internal/api"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// Handler exposes the resolution service over HTTP.
type Handler struct {
	nameService     Service
	logger          *slog.Logger
	defaultDistance int
}

func NewHandler(nameService Service, defaultDistance int, logger *slog.Logger) *Handler {
	return &Handler{
		nameService:     nameService,
		logger:          logger,
		defaultDistance: defaultDistance,
	}
}

// GetName resolves one coordinate, fetching from live providers on cache
// misses.
func (h *Handler) GetName(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "GetName", false)
}

// GetCachedName resolves one coordinate from the caches only; an uncached
// coordinate produces an empty placename without any upstream call.
func (h *Handler) GetCachedName(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "GetCachedName", true)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, route string, cacheOnly bool) {
	ctx, span := otel.Tracer(route).Start(r.Context(), route, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(r.URL.Path),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", route))

	coord, ok := h.coordParams(w, r)
	if !ok {
		return
	}
	distance := h.distanceParam(r)
	includeCountry := r.URL.Query().Get("country") == "true"

	placename, err := h.nameService.ResolveOne(ctx, coord, distance, cacheOnly, includeCountry)
	if err != nil {
		l.ErrorContext(ctx, "Resolution failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to resolve coordinate")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, placename)
}

// BulkRequest is the POST body for bulk resolution.
type BulkRequest struct {
	Items []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"items"`
	Distance  *int `json:"distance,omitempty"`
	Country   bool `json:"country,omitempty"`
	CacheOnly bool `json:"cacheOnly,omitempty"`
}

// BulkResponse carries one placename per requested item, in request order.
type BulkResponse struct {
	Places []types.Placename `json:"places"`
}

// BulkNames resolves many coordinates in one request.
func (h *Handler) BulkNames(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BulkNames").Start(r.Context(), "BulkNames", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/bulk"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "BulkNames"))

	var req BulkRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "items must not be empty")
		return
	}

	coords := make([]types.Coordinate, len(req.Items))
	for i, item := range req.Items {
		coords[i] = types.Coordinate{Latitude: item.Lat, Longitude: item.Lon}
	}
	distance := h.defaultDistance
	if req.Distance != nil && *req.Distance > 0 {
		distance = *req.Distance
	}

	places, err := h.nameService.ResolveBulk(ctx, coords, distance, req.CacheOnly, req.Country)
	if err != nil {
		l.ErrorContext(ctx, "Bulk resolution failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to resolve coordinates")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, BulkResponse{Places: places})
}

// TestName shows each provider's individual answer next to the merged one.
func (h *Handler) TestName(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TestName").Start(r.Context(), "TestName")
	defer span.End()

	l := h.logger.With(slog.String("handler", "TestName"))

	coord, ok := h.coordParams(w, r)
	if !ok {
		return
	}

	diagnosis, err := h.nameService.Diagnose(ctx, coord, h.distanceParam(r))
	if err != nil {
		l.ErrorContext(ctx, "Diagnose failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to diagnose coordinate")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, diagnosis)
}

func (h *Handler) coordParams(w http.ResponseWriter, r *http.Request) (types.Coordinate, bool) {
	latParam := r.URL.Query().Get("lat")
	lonParam := r.URL.Query().Get("lon")
	if latParam == "" || lonParam == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon must be specified")
		return types.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat must be a number")
		return types.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(lonParam, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lon must be a number")
		return types.Coordinate{}, false
	}

	return types.Coordinate{Latitude: lat, Longitude: lon}, true
}

func (h *Handler) distanceParam(r *http.Request) int {
	distance := h.defaultDistance
	if d := r.URL.Query().Get("distance"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			distance = parsed
		}
	}
	return distance
}
