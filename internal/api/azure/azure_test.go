package azure

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

func newTestAdapter() *Adapter {
	cfg := config.ProviderConfig{BaseURL: "http://azure.invalid", Key: "k", Timeout: time.Second}
	return NewAdapter(cfg, slog.New(slog.DiscardHandler))
}

var testCoord = types.Coordinate{Latitude: 47.6062, Longitude: -122.3321}

func addressPayload(t *testing.T, municipality, entityType *string, position string) json.RawMessage {
	t.Helper()
	address := map[string]any{
		"countrySubdivision": "Washington",
		"countryCode":        "US",
		"country":            "United States",
		"freeformAddress":    "400 Broad St, Seattle, WA 98109",
	}
	if municipality != nil {
		address["municipality"] = *municipality
	}
	if entityType != nil {
		address["entityType"] = *entityType
	}
	raw, err := json.Marshal(map[string]any{
		"addresses": []any{map[string]any{"address": address, "position": position}},
	})
	require.NoError(t, err)
	return raw
}

func nearbyPosition() string {
	return fmt.Sprintf("%f,%f", testCoord.Latitude, testCoord.Longitude)
}

func TestToPlacename_TrustedMunicipality(t *testing.T) {
	adapter := newTestAdapter()
	raw := addressPayload(t, types.String("Seattle"), types.String("Municipality"), nearbyPosition())

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)

	require.NotNil(t, placename.City)
	assert.Equal(t, "Seattle", *placename.City)
	assert.Equal(t, "Washington", *placename.State)
	assert.Equal(t, "US", *placename.CountryCode)
	assert.Equal(t, "400 Broad St, Seattle, WA 98109", placename.FullDescription)
}

func TestToPlacename_MunicipalityWithCommaDropped(t *testing.T) {
	adapter := newTestAdapter()
	raw := addressPayload(t, types.String("Seattle, Bellevue"), types.String("Municipality"), nearbyPosition())

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)
	assert.Nil(t, placename.City)
	// The rest of the address still comes through.
	assert.Equal(t, "Washington", *placename.State)
}

func TestToPlacename_FarMunicipalityDropped(t *testing.T) {
	adapter := newTestAdapter()
	// Roughly 30 km away.
	raw := addressPayload(t, types.String("Tacoma"), types.String("Municipality"), "47.2529,-122.4443")

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)
	assert.Nil(t, placename.City)
}

func TestToPlacename_NonMunicipalityEntityDropped(t *testing.T) {
	adapter := newTestAdapter()
	raw := addressPayload(t, types.String("King County"), types.String("CountrySecondarySubdivision"), nearbyPosition())

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)
	assert.Nil(t, placename.City)
}

func TestToPlacename_MissingEntityTypeStillTrusted(t *testing.T) {
	adapter := newTestAdapter()
	raw := addressPayload(t, types.String("Seattle"), nil, nearbyPosition())

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)
	require.NotNil(t, placename.City)
	assert.Equal(t, "Seattle", *placename.City)
}

func TestToPlacename_UnparseablePositionDropsCity(t *testing.T) {
	adapter := newTestAdapter()
	raw := addressPayload(t, types.String("Seattle"), types.String("Municipality"), "not-a-position")

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)
	assert.Nil(t, placename.City)
}

func TestToPlacename_NoAddresses(t *testing.T) {
	adapter := newTestAdapter()

	_, err := adapter.ToPlacename(testCoord, json.RawMessage(`{"addresses":[]}`))
	assert.ErrorIs(t, err, types.ErrNoAddress)

	_, err = adapter.ToPlacename(testCoord, json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, types.ErrNoAddress)
}
