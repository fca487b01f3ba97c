package name

import (
	"context"
	"encoding/json"

	"github.com/FACorreiaa/go-place-lookup/internal/api/azure"
	"github.com/FACorreiaa/go-place-lookup/internal/api/foursquare"
	"github.com/FACorreiaa/go-place-lookup/internal/api/opencage"
	"github.com/FACorreiaa/go-place-lookup/internal/api/overpass"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// Provider keys used to address candidates in merge results. They match the
// Name() of the corresponding adapter.
const (
	ProviderOverpass   = overpass.ProviderName
	ProviderAzure      = azure.ProviderName
	ProviderFoursquare = foursquare.ProviderName
	ProviderOpenCage   = opencage.ProviderName
)

// Adapter is one upstream source. Implementations build the provider
// request, turn the raw payload into a placename and decide how a cached
// payload is post-processed before normalization.
type Adapter interface {
	Name() string
	CacheIndex() string
	FetchSource(ctx context.Context, coord types.Coordinate, distanceMeters int) (json.RawMessage, error)
	// ToPlacename returns types.ErrNoAddress (possibly wrapped) when the
	// payload lacks the fields required to build a placename.
	ToPlacename(coord types.Coordinate, raw json.RawMessage) (types.Placename, error)
	// PostCache may rewrite a payload read back from the cache, e.g. to
	// re-derive a compacted view; most adapters return it unchanged.
	PostCache(raw json.RawMessage) json.RawMessage
}

// Candidate pairs one provider's normalized placename with the raw response
// it came from. An all-zero Candidate means the provider contributed
// nothing, which is never an error by itself.
type Candidate struct {
	Placename types.Placename
	Raw       json.RawMessage
}

// Candidates holds one candidate per provider, keyed by provider name.
type Candidates map[string]Candidate
