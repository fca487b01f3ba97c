package foursquare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const (
	ProviderName   = "foursquare"
	CacheIndexName = "foursquare_placenames_cache"

	// Venues beyond this distance never contribute a site or a city vote.
	maxVenueDistanceMeters = 2000
)

// Adapter wraps the Foursquare venue search.
type Adapter struct {
	logger       *slog.Logger
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewAdapter(cfg config.ProviderConfig, logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:       logger,
		baseURL:      cfg.BaseURL,
		clientID:     cfg.Key,
		clientSecret: cfg.Secret,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
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
	params.Set("client_id", a.clientID)
	params.Set("client_secret", a.clientSecret)
	params.Set("v", "20180323")
	params.Set("limit", "20")
	params.Set("llAcc", "100")
	params.Set("radius", "500")
	params.Set("ll", fmt.Sprintf("%f, %f", coord.Latitude, coord.Longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build foursquare request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: foursquare status %d", types.ErrNoDataReturned, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	return body, nil
}

// PostCache compacts a cached response at read time: the cache keeps the
// full venue list, but consumers only ever see venues within range that
// aren't in a never-of-interest category.
func (a *Adapter) PostCache(raw json.RawMessage) json.RawMessage {
	var decoded venuesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw
	}

	var kept []venue
	for _, v := range decoded.Response.Venues {
		if v.Location.Distance < maxVenueDistanceMeters && !hasDiscardableCategories(v.Categories) {
			kept = append(kept, v)
		}
	}
	decoded.Response.Venues = kept

	compacted, err := json.Marshal(decoded)
	if err != nil {
		return raw
	}
	return compacted
}

type venuesResponse struct {
	Response struct {
		Venues []venue `json:"venues"`
	} `json:"response"`
}

type venue struct {
	Name       *string    `json:"name"`
	Categories []category `json:"categories"`
	Location   struct {
		City             *string  `json:"city"`
		State            *string  `json:"state"`
		CC               *string  `json:"cc"`
		Country          *string  `json:"country"`
		Distance         int      `json:"distance"`
		FormattedAddress []string `json:"formattedAddress"`
	} `json:"location"`
}

type category struct {
	ShortName string `json:"shortName"`
}

// ToPlacename picks the closest venue with an acceptable category, falling
// back to the raw closest venue for the address fields when none qualifies.
func (a *Adapter) ToPlacename(coord types.Coordinate, raw json.RawMessage) (types.Placename, error) {
	var decoded venuesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.Placename{}, fmt.Errorf("%w: %s", types.ErrNoAddress, err)
	}
	venues := decoded.Response.Venues
	if len(venues) == 0 {
		return types.Placename{}, types.ErrNoAddress
	}

	accepted := make([]venue, 0, len(venues))
	for _, v := range venues {
		if hasAcceptableCategories(v.Categories) {
			accepted = append(accepted, v)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Location.Distance < accepted[j].Location.Distance
	})

	chosen := venues[0]
	var site *string
	if len(accepted) > 0 {
		chosen = accepted[0]
		site = chosen.Name
	}

	var sites []string
	if site != nil {
		sites = []string{*site}
	}

	return types.NewPlacename(sites, site,
		chosen.Location.City,
		chosen.Location.State,
		chosen.Location.CC,
		chosen.Location.Country,
		strings.Join(chosen.Location.FormattedAddress, ", ")), nil
}

// CityVote returns the most repeated city name among nearby venues. Used by
// the merge engine when no authoritative city is available.
func CityVote(raw json.RawMessage) *string {
	var decoded venuesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	// Ties break toward the city seen first in venue order, so the same
	// payload always votes the same way.
	counts := map[string]int{}
	var order []string
	for _, v := range decoded.Response.Venues {
		if v.Location.City == nil || v.Location.Distance >= maxVenueDistanceMeters {
			continue
		}
		if counts[*v.Location.City] == 0 {
			order = append(order, *v.Location.City)
		}
		counts[*v.Location.City]++
	}

	best := ""
	for _, city := range order {
		if best == "" || counts[city] > counts[best] {
			best = city
		}
	}
	if best == "" {
		return nil
	}
	return &best
}

func hasAcceptableCategories(categories []category) bool {
	for _, c := range categories {
		if acceptedCategoryShortNames[c.ShortName] {
			return true
		}
	}
	return false
}

func hasDiscardableCategories(categories []category) bool {
	for _, c := range categories {
		if discardedCategoryShortNames[c.ShortName] {
			return true
		}
	}
	return false
}

// From https://developer.foursquare.com/docs/resources/categories
var acceptedCategoryShortNames = map[string]bool{
	"Airport":           true,
	"Amphitheater":      true,
	"Aquarium":          true,
	"Castle":            true,
	"Church":            true,
	"Historic Site":     true,
	"Hot Spring":        true,
	"Landmark":          true,
	"Memorial Site":     true,
	"Museum":            true,
	"Opera House":       true,
	"Outdoor Sculpture": true,
	"Palace":            true,
	"Scenic Lookout":    true,
	"Sculpture":         true,
	"Ski Area":          true,
	"Spiritual Center":  true,
	"Stadium":           true,
	"Train Station":     true,
	"Zoo":               true,
}

// These have been deemed never of interest and are filtered out of the
// compacted cache view.
var discardedCategoryShortNames = map[string]bool{
	"Arcade": true, "Bowling Alley": true, "Casino": true, "Circus": true, "Comedy Club": true,
	"Bus": true, "Bus Station": true, "Bus Stop": true, "Coffee Shop": true, "Pharmacy": true,
	"Noodles": true, "Automotive": true,
	"Café": true, "Korean": true, "Sandwiches": true, "Thai": true,
	"Government": true, "Office": true, "Post Office": true, "Real Estate": true,
	"Shipping Store": true, "Tech Startup": true,
}
