package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

const (
	ProviderName   = "azure"
	CacheIndexName = "azure_placenames_cache"

	// A municipality is only trusted when the returned address is actually
	// close to the query point.
	maxTrustedDistanceMeters = 2000
)

// Adapter wraps the Azure Maps reverse-address search.
type Adapter struct {
	logger          *slog.Logger
	baseURL         string
	subscriptionKey string
	httpClient      *http.Client
}

func NewAdapter(cfg config.ProviderConfig, logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:          logger,
		baseURL:         cfg.BaseURL,
		subscriptionKey: cfg.Key,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
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
	params.Set("subscription-key", a.subscriptionKey)
	params.Set("api-version", "1.0")
	params.Set("query", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))
	params.Set("radius", "500")
	params.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build azure request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoDataReturned, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: azure status %d", types.ErrNoDataReturned, resp.StatusCode)
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

// reverseResponse is the typed projection of the fields this adapter reads.
type reverseResponse struct {
	Addresses []struct {
		Address struct {
			Municipality       *string `json:"municipality"`
			CountrySubdivision *string `json:"countrySubdivision"`
			CountryCode        *string `json:"countryCode"`
			Country            *string `json:"country"`
			FreeformAddress    *string `json:"freeformAddress"`
			EntityType         *string `json:"entityType"`
		} `json:"address"`
		// Position is a "lat,lon" string, used to measure how far the
		// returned address is from the query point.
		Position string `json:"position"`
	} `json:"addresses"`
}

func (a *Adapter) ToPlacename(coord types.Coordinate, raw json.RawMessage) (types.Placename, error) {
	var decoded reverseResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.Placename{}, fmt.Errorf("%w: %s", types.ErrNoAddress, err)
	}
	if len(decoded.Addresses) == 0 {
		return types.Placename{}, types.ErrNoAddress
	}

	first := decoded.Addresses[0]
	city := trustedCity(first.Address.Municipality, first.Address.EntityType,
		positionDistance(coord, first.Position))

	fullDescription := ""
	if first.Address.FreeformAddress != nil {
		fullDescription = *first.Address.FreeformAddress
	}

	return types.NewPlacename(nil, nil, city,
		first.Address.CountrySubdivision,
		first.Address.CountryCode,
		first.Address.Country,
		fullDescription), nil
}

// trustedCity drops municipalities that are too far away, carry a comma (a
// malformed multi-city value) or describe a non-municipality entity.
func trustedCity(municipality, entityType *string, distance *float64) *string {
	if municipality == nil || strings.Contains(*municipality, ",") {
		return nil
	}
	if distance == nil || *distance >= maxTrustedDistanceMeters {
		return nil
	}
	if entityType != nil && *entityType != "Municipality" {
		return nil
	}
	return municipality
}

func positionDistance(coord types.Coordinate, position string) *float64 {
	tokens := strings.Split(position, ",")
	if len(tokens) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(tokens[0], 64)
	lon, err2 := strconv.ParseFloat(tokens[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	d := types.MetersBetween(coord.Latitude, coord.Longitude, lat, lon)
	return &d
}
