package foursquare

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-place-lookup/config"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

func newTestAdapter() *Adapter {
	cfg := config.ProviderConfig{BaseURL: "http://foursquare.invalid", Key: "id", Secret: "secret", Timeout: time.Second}
	return NewAdapter(cfg, slog.New(slog.DiscardHandler))
}

var testCoord = types.Coordinate{Latitude: 47.6062, Longitude: -122.3321}

type testVenue struct {
	name     string
	category string
	city     string
	distance int
}

func venuesPayload(t *testing.T, venues []testVenue) json.RawMessage {
	t.Helper()
	items := make([]any, len(venues))
	for i, v := range venues {
		var categories []any
		if v.category != "" {
			categories = append(categories, map[string]any{"shortName": v.category})
		}
		items[i] = map[string]any{
			"name":       v.name,
			"categories": categories,
			"location": map[string]any{
				"city":             v.city,
				"state":            "WA",
				"cc":               "US",
				"country":          "United States",
				"distance":         v.distance,
				"formattedAddress": []string{"123 Main St", "Seattle, WA 98101"},
			},
		}
	}
	raw, err := json.Marshal(map[string]any{"response": map[string]any{"venues": items}})
	require.NoError(t, err)
	return raw
}

func TestToPlacename_ClosestAcceptedVenueWins(t *testing.T) {
	adapter := newTestAdapter()
	raw := venuesPayload(t, []testVenue{
		{name: "Far Museum", category: "Museum", city: "Seattle", distance: 900},
		{name: "Space Needle", category: "Landmark", city: "Seattle", distance: 50},
		{name: "Random Cafe", category: "Coffee Shop", city: "Seattle", distance: 10},
	})

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)

	require.NotNil(t, placename.Site)
	assert.Equal(t, "Space Needle", *placename.Site)
	assert.Equal(t, []string{"Space Needle"}, placename.Sites)
	assert.Equal(t, "123 Main St, Seattle, WA 98101", placename.FullDescription)
}

func TestToPlacename_NoAcceptedCategoryMeansNoSite(t *testing.T) {
	adapter := newTestAdapter()
	raw := venuesPayload(t, []testVenue{
		{name: "Random Cafe", category: "Coffee Shop", city: "Seattle", distance: 10},
	})

	placename, err := adapter.ToPlacename(testCoord, raw)
	require.NoError(t, err)

	assert.Nil(t, placename.Site)
	// Address fields still come from the closest venue.
	require.NotNil(t, placename.City)
	assert.Equal(t, "Seattle", *placename.City)
}

func TestToPlacename_NoVenues(t *testing.T) {
	adapter := newTestAdapter()

	_, err := adapter.ToPlacename(testCoord, json.RawMessage(`{"response":{"venues":[]}}`))
	assert.ErrorIs(t, err, types.ErrNoAddress)

	_, err = adapter.ToPlacename(testCoord, json.RawMessage(`{oops`))
	assert.ErrorIs(t, err, types.ErrNoAddress)
}

func TestCityVote(t *testing.T) {
	raw := venuesPayload(t, []testVenue{
		{name: "A", category: "Landmark", city: "Kirkland", distance: 100},
		{name: "B", category: "Museum", city: "Kirkland", distance: 200},
		{name: "C", category: "Church", city: "Bellevue", distance: 150},
	})

	city := CityVote(raw)
	require.NotNil(t, city)
	assert.Equal(t, "Kirkland", *city)
}

func TestCityVote_IgnoresFarVenues(t *testing.T) {
	raw := venuesPayload(t, []testVenue{
		{name: "A", category: "Landmark", city: "Kirkland", distance: 5000},
		{name: "B", category: "Museum", city: "Bellevue", distance: 100},
	})

	city := CityVote(raw)
	require.NotNil(t, city)
	assert.Equal(t, "Bellevue", *city)
}

func TestCityVote_TieBreaksOnVenueOrder(t *testing.T) {
	raw := venuesPayload(t, []testVenue{
		{name: "A", category: "Landmark", city: "Kirkland", distance: 100},
		{name: "B", category: "Museum", city: "Bellevue", distance: 100},
		{name: "C", category: "Church", city: "Bellevue", distance: 100},
		{name: "D", category: "Landmark", city: "Kirkland", distance: 100},
	})

	for i := 0; i < 100; i++ {
		city := CityVote(raw)
		require.NotNil(t, city)
		assert.Equal(t, "Kirkland", *city)
	}
}

func TestCityVote_NoNearbyCities(t *testing.T) {
	raw := venuesPayload(t, []testVenue{
		{name: "A", category: "Landmark", city: "Kirkland", distance: 5000},
	})
	assert.Nil(t, CityVote(raw))
	assert.Nil(t, CityVote(json.RawMessage(`{"response":{"venues":[]}}`)))
	assert.Nil(t, CityVote(nil))
}

func TestPostCache_CompactsVenueList(t *testing.T) {
	adapter := newTestAdapter()
	raw := venuesPayload(t, []testVenue{
		{name: "Keep Me", category: "Landmark", city: "Seattle", distance: 100},
		{name: "Too Far", category: "Museum", city: "Seattle", distance: 3000},
		{name: "Never Interesting", category: "Casino", city: "Seattle", distance: 50},
	})

	compacted := adapter.PostCache(raw)

	var decoded venuesResponse
	require.NoError(t, json.Unmarshal(compacted, &decoded))
	require.Len(t, decoded.Response.Venues, 1)
	assert.Equal(t, "Keep Me", *decoded.Response.Venues[0].Name)
}

func TestPostCache_MalformedPayloadPassesThrough(t *testing.T) {
	adapter := newTestAdapter()
	raw := json.RawMessage(`{broken`)
	assert.Equal(t, raw, adapter.PostCache(raw))
}
