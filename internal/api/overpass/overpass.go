package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const (
	// ProviderName identifies this adapter in merge results.
	ProviderName = "overpass"
	// CacheIndexName is the proximity-cache namespace for raw responses.
	CacheIndexName = "overpass_placenames_cache"

	// The query asks for bounding boxes of everything enclosing the point,
	// clipped to roughly a 7x8 km area around it.
	// https://en.wikipedia.org/wiki/Decimal_degrees
	latDelta = 0.1
	lonDelta = 0.2
)

// Adapter resolves a coordinate against the Overpass boundary-graph API and
// interprets the enclosing administrative hierarchy. For rate limit status,
// see http://overpass-api.de/api/status
type Adapter struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewAdapter(cfg config.ProviderConfig, logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:     logger,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) CacheIndex() string {
	return CacheIndexName
}

// FetchSource queries Overpass for the administrative elements and tagged
// features around the coordinate. The response is compacted before it is
// returned so the cache never stores geometry blobs or the dozens of
// per-language name variants.
func (a *Adapter) FetchSource(ctx context.Context, coord types.Coordinate, distanceMeters int) (json.RawMessage, error) {
	query := fmt.Sprintf(
		"[timeout:7][out:json];is_in(%[1]f,%[2]f)->.a;way(pivot.a);out tags geom(%[3]f,%[4]f,%[5]f,%[6]f);out bb ids;relation(pivot.a);out tags bb;",
		coord.Latitude, coord.Longitude,
		coord.Latitude-latDelta, coord.Longitude-lonDelta,
		coord.Latitude+latDelta, coord.Longitude+lonDelta,
	)
	a.logger.DebugContext(ctx, "Overpass query", slog.String("query", query))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: overpass status %d", types.ErrNoDataReturned, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}

	return compact(decoded)
}

// PostCache is a no-op; the response is compacted before it is persisted.
func (a *Adapter) PostCache(raw json.RawMessage) json.RawMessage {
	return raw
}

// ToPlacename interprets the boundary graph: usable admin elements ordered
// by level give country, state and city; every other named element is tested
// against the site heuristics and ranked by bounding-box area.
func (a *Adapter) ToPlacename(coord types.Coordinate, raw json.RawMessage) (types.Placename, error) {
	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.Placename{}, fmt.Errorf("%w: %s", types.ErrNoAddress, err)
	}

	adminElements := usableAdminElements(decoded.Elements)
	if len(adminElements) == 0 {
		return types.Placename{}, nil
	}

	countryCode := countryCodeOf(adminElements)
	if countryCode == "" {
		return types.Placename{}, nil
	}
	cc := strings.ToLower(countryCode)

	countryName := countryNameOf(adminElements, cc)
	state := types.StateNameToCode(cc, stateOf(cc, decoded.Elements))
	city := cityOf(cc, state, adminElements)
	sites := sitesOf(a.logger, decoded.Elements)

	var siteNames []string
	var site *string
	for _, s := range sites {
		siteNames = append(siteNames, s.Name)
	}
	if len(siteNames) > 0 {
		site = &siteNames[0]
	}

	var components []string
	components = append(components, siteNames...)
	for _, p := range []*string{city, state, countryName} {
		if p != nil {
			components = append(components, *p)
		}
	}

	return types.NewPlacename(siteNames, site, city, state, &cc, countryName,
		strings.Join(components, ", ")), nil
}

func countryCodeOf(adminElements []element) string {
	for _, el := range adminElements {
		if el.Tags["admin_level"] != countryAdminLevel {
			continue
		}
		if code, ok := el.Tags["ISO3166-1:alpha2"]; ok {
			return code
		}
		return el.Tags["ISO3166-1"]
	}
	return ""
}

func countryNameOf(adminElements []element, cc string) *string {
	if cc == types.HomeCountryCode {
		return nil
	}
	if name := types.CountryDisplayName(&cc); name != nil {
		return name
	}
	for _, el := range adminElements {
		if el.Tags["admin_level"] == countryAdminLevel {
			if name := el.name(); name != nil {
				return name
			}
		}
	}
	return nil
}
