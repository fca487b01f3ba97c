package name

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-place-lookup/app/geocache"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

func cityPlacename(city string) types.Placename {
	return types.NewPlacename(nil, nil, types.String(city), nil, types.String("us"), nil, "")
}

// newCachedAdapter builds a mock adapter whose payloads always normalize to
// the given city.
func newCachedAdapter(providerName, city string) *MockAdapter {
	adapter := new(MockAdapter)
	adapter.On("Name").Return(providerName)
	adapter.On("CacheIndex").Return(providerName + "_cache")
	adapter.On("PostCache", mock.Anything).Return(json.RawMessage(`{}`))
	adapter.On("ToPlacename", mock.Anything, mock.Anything).Return(cityPlacename(city), nil)
	return adapter
}

func TestOrchestrator_ResolveAllMergesEveryProvider(t *testing.T) {
	ctx := context.Background()

	adapterA := newCachedAdapter("alpha", "Seattle")
	adapterB := newCachedAdapter("beta", "Tacoma")

	store := NewMockStore()
	store.On("Lookup", mock.Anything, "alpha_cache", testCoord, 500).Return(json.RawMessage(`{}`), nil)
	store.On("Lookup", mock.Anything, "beta_cache", testCoord, 500).Return(json.RawMessage(`{}`), nil)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(adapterA, store, testLogger()),
		NewResolver(adapterB, store, testLogger()),
	}, store, testLogger())

	candidates := orchestrator.ResolveAll(ctx, testCoord, 500, false)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Seattle", *candidates["alpha"].Placename.City)
	assert.Equal(t, "Tacoma", *candidates["beta"].Placename.City)
}

func TestOrchestrator_ProviderFailureIsIsolated(t *testing.T) {
	ctx := context.Background()

	healthy := newCachedAdapter("healthy", "Seattle")

	broken := new(MockAdapter)
	broken.On("Name").Return("broken")
	broken.On("CacheIndex").Return("broken_cache")
	broken.On("FetchSource", mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrNoDataReturned)

	store := NewMockStore()
	store.On("Lookup", mock.Anything, "healthy_cache", testCoord, 500).Return(json.RawMessage(`{}`), nil)
	store.On("Lookup", mock.Anything, "broken_cache", testCoord, 500).Return(nil, types.ErrNoMatches)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(healthy, store, testLogger()),
		NewResolver(broken, store, testLogger()),
	}, store, testLogger())

	candidates := orchestrator.ResolveAll(ctx, testCoord, 500, false)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Seattle", *candidates["healthy"].Placename.City)
	assert.True(t, candidates["broken"].Placename.IsEmpty())
}

func TestOrchestrator_ResolveBulkSingleCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	coords := []types.Coordinate{
		{Latitude: 47.6062, Longitude: -122.3321},
		{Latitude: 45.5152, Longitude: -122.6784},
		{Latitude: 37.7749, Longitude: -122.4194},
	}

	adapterA := newCachedAdapter("alpha", "CityA")
	adapterB := newCachedAdapter("beta", "CityB")

	// 3 coords x 2 providers = 6 queries, all hits.
	raws := make([]json.RawMessage, 6)
	for i := range raws {
		raws[i] = json.RawMessage(fmt.Sprintf(`{"slot":%d}`, i))
	}

	store := NewMockStore()
	store.On("BulkLookup", mock.Anything, mock.MatchedBy(func(queries []geocache.Query) bool {
		return len(queries) == 6
	}), 500).Return(raws, nil)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(adapterA, store, testLogger()),
		NewResolver(adapterB, store, testLogger()),
	}, store, testLogger())

	results := orchestrator.ResolveBulk(ctx, coords, 500, false)

	require.Len(t, results, 3)
	for _, candidates := range results {
		assert.Equal(t, "CityA", *candidates["alpha"].Placename.City)
		assert.Equal(t, "CityB", *candidates["beta"].Placename.City)
	}
	store.AssertNumberOfCalls(t, "BulkLookup", 1)
	adapterA.AssertNotCalled(t, "FetchSource", mock.Anything, mock.Anything, mock.Anything)
	adapterB.AssertNotCalled(t, "FetchSource", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_ResolveBulkFetchesOnlyMisses(t *testing.T) {
	ctx := context.Background()
	coords := []types.Coordinate{
		{Latitude: 47.6062, Longitude: -122.3321},
		{Latitude: 45.5152, Longitude: -122.6784},
	}

	adapter := newCachedAdapter("alpha", "CityA")
	adapter.On("FetchSource", mock.Anything, coords[1], 500).Return(json.RawMessage(`{"live":true}`), nil)

	// First coordinate hits, second misses.
	raws := []json.RawMessage{json.RawMessage(`{"cached":true}`), nil}

	store := NewMockStore()
	store.On("BulkLookup", mock.Anything, mock.Anything, 500).Return(raws, nil)
	store.On("Persist", mock.Anything, "alpha_cache", coords[1], mock.Anything).Return(nil)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(adapter, store, testLogger()),
	}, store, testLogger())

	results := orchestrator.ResolveBulk(ctx, coords, 500, false)

	require.Len(t, results, 2)
	assert.Equal(t, "CityA", *results[0]["alpha"].Placename.City)
	assert.Equal(t, "CityA", *results[1]["alpha"].Placename.City)

	adapter.AssertNumberOfCalls(t, "FetchSource", 1)
	store.waitForPersist(t)
}

func TestOrchestrator_ResolveBulkCacheOnlyLeavesMissesEmpty(t *testing.T) {
	ctx := context.Background()
	coords := []types.Coordinate{
		{Latitude: 47.6062, Longitude: -122.3321},
		{Latitude: 45.5152, Longitude: -122.6784},
	}

	adapter := newCachedAdapter("alpha", "CityA")

	raws := []json.RawMessage{json.RawMessage(`{"cached":true}`), nil}

	store := NewMockStore()
	store.On("BulkLookup", mock.Anything, mock.Anything, 500).Return(raws, nil)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(adapter, store, testLogger()),
	}, store, testLogger())

	results := orchestrator.ResolveBulk(ctx, coords, 500, true)

	require.Len(t, results, 2)
	assert.Equal(t, "CityA", *results[0]["alpha"].Placename.City)
	assert.True(t, results[1]["alpha"].Placename.IsEmpty())
	adapter.AssertNotCalled(t, "FetchSource", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_ResolveBulkDegradesWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	coords := []types.Coordinate{{Latitude: 47.6062, Longitude: -122.3321}}

	adapter := newCachedAdapter("alpha", "CityA")
	adapter.On("FetchSource", mock.Anything, coords[0], 500).Return(json.RawMessage(`{"live":true}`), nil)

	store := NewMockStore()
	store.On("BulkLookup", mock.Anything, mock.Anything, 500).Return(nil, assert.AnError)
	store.On("Persist", mock.Anything, "alpha_cache", coords[0], mock.Anything).Return(nil)

	orchestrator := NewOrchestrator([]*Resolver{
		NewResolver(adapter, store, testLogger()),
	}, store, testLogger())

	results := orchestrator.ResolveBulk(ctx, coords, 500, false)

	require.Len(t, results, 1)
	assert.Equal(t, "CityA", *results[0]["alpha"].Placename.City)
}
