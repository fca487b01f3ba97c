package opencage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const (
	ProviderName   = "opencage"
	CacheIndexName = "opencagedata_placenames_cache"
)

// Adapter wraps the OpenCage reverse geocoder, the structured
// locality/region/country source.
type Adapter struct {
	logger     *slog.Logger
	baseURL    string
	key        string
	httpClient *http.Client
}

func NewAdapter(cfg config.ProviderConfig, logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:     logger,
		baseURL:    cfg.BaseURL,
		key:        cfg.Key,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) CacheIndex() string {
	return CacheIndexName
}

func (a *Adapter) FetchSource(ctx context.Context, coord types.Coordinate, distanceMeters int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("key", a.key)
	params.Set("no_annotations", "1")
	params.Set("q", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build opencage request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: opencage status %d", types.ErrNoDataReturned, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	return body, nil
}

func (a *Adapter) PostCache(raw json.RawMessage) json.RawMessage {
	return raw
}

// Components is the typed projection of the first result's components
// object; only the fields the merge engine and this adapter read.
type Components struct {
	Attraction         *string `json:"attraction"`
	ArchaeologicalSite *string `json:"archaeological_site"`
	BodyOfWater        *string `json:"body_of_water"`
	Castle             *string `json:"castle"`
	Garden             *string `json:"garden"`
	Library            *string `json:"library"`
	Memorial           *string `json:"memorial"`
	Museum             *string `json:"museum"`
	PlaceOfWorship     *string `json:"place_of_worship"`
	Ruins              *string `json:"ruins"`
	Stadium            *string `json:"stadium"`
	Zoo                *string `json:"zoo"`

	Cycleway *string `json:"cycleway"`
	Path     *string `json:"path"`
	Footway  *string `json:"footway"`

	City        *string `json:"city"`
	County      *string `json:"county"`
	State       *string `json:"state"`
	StateCode   *string `json:"state_code"`
	CountryCode *string `json:"country_code"`
	Country     *string `json:"country"`
}

type geocodeResponse struct {
	Results []struct {
		Components *Components `json:"components"`
		Formatted  *string     `json:"formatted"`
	} `json:"results"`
}

// ParseComponents extracts the first result's components from a raw
// response. The second return is false when the payload has none.
func ParseComponents(raw json.RawMessage) (*Components, bool) {
	var decoded geocodeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	if len(decoded.Results) == 0 || decoded.Results[0].Components == nil {
		return nil, false
	}
	return decoded.Results[0].Components, true
}

// SiteComponents lists the site-like component values in priority order.
func (c *Components) SiteComponents() []*string {
	return []*string{
		c.Attraction,
		c.ArchaeologicalSite,
		c.BodyOfWater,
		c.Castle,
		c.Garden,
		c.Library,
		c.Memorial,
		c.Museum,
		c.PlaceOfWorship,
		c.Ruins,
		c.Stadium,
		c.Zoo,
	}
}

func (a *Adapter) ToPlacename(coord types.Coordinate, raw json.RawMessage) (types.Placename, error) {
	var decoded geocodeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.Placename{}, fmt.Errorf("%w: %s", types.ErrNoAddress, err)
	}
	if len(decoded.Results) == 0 || decoded.Results[0].Components == nil {
		return types.Placename{}, types.ErrNoAddress
	}
	if len(decoded.Results) > 1 {
		a.logger.Debug("opencage returned multiple results", slog.Int("count", len(decoded.Results)))
	}

	first := decoded.Results[0]
	components := first.Components

	var site *string
	for _, s := range components.SiteComponents() {
		if s != nil {
			site = s
			break
		}
	}
	var sites []string
	if site != nil {
		sites = []string{*site}
	}

	formatted := ""
	if first.Formatted != nil {
		formatted = *first.Formatted
	}

	return types.NewPlacename(sites, site,
		components.City,
		components.StateCode,
		components.CountryCode,
		components.Country,
		formatted), nil
}
