package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlacename_DescriptionJoinsNonNilParts(t *testing.T) {
	p := NewPlacename(nil, String("Eiffel Tower"), String("Paris"), nil, String("fr"), String("France"), "Tour Eiffel, Paris, France")

	assert.Equal(t, "Eiffel Tower, Paris, France", p.Description)
	assert.Equal(t, "Tour Eiffel, Paris, France", p.FullDescription)
}

func TestNewPlacename_SkipsNilAndEmptyParts(t *testing.T) {
	p := NewPlacename(nil, nil, String("Seattle"), String("WA"), String("us"), nil, "")
	assert.Equal(t, "Seattle, WA", p.Description)

	p = NewPlacename(nil, String(""), String("Seattle"), String("WA"), String("us"), nil, "")
	assert.Equal(t, "Seattle, WA", p.Description)
}

func TestNewPlacename_SuppressesCityEqualToSite(t *testing.T) {
	p := NewPlacename(nil, String("Gibraltar"), String("Gibraltar"), nil, String("gi"), String("Gibraltar"), "")

	assert.Nil(t, p.City)
	assert.Equal(t, "Gibraltar, Gibraltar", p.Description)
}

func TestNewPlacename_Empty(t *testing.T) {
	p := NewPlacename(nil, nil, nil, nil, nil, nil, "")
	assert.Equal(t, "", p.Description)
	assert.True(t, p.IsEmpty())
}

func TestPlacename_IsEmpty(t *testing.T) {
	assert.False(t, NewPlacename(nil, nil, String("Paris"), nil, nil, nil, "").IsEmpty())
	assert.False(t, NewPlacename([]string{"Louvre"}, nil, nil, nil, nil, nil, "").IsEmpty())
	assert.False(t, NewPlacename(nil, nil, nil, nil, nil, nil, "somewhere").IsEmpty())
}

func TestStampForPersistence(t *testing.T) {
	p := NewPlacename(nil, nil, String("Lisbon"), nil, String("pt"), String("Portugal"), "")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p.StampForPersistence(Coordinate{Latitude: 38.7223, Longitude: -9.1393}, now)

	require.NotNil(t, p.Location)
	assert.Equal(t, 38.7223, p.Location.Latitude)
	assert.Equal(t, -9.1393, p.Location.Longitude)
	require.NotNil(t, p.CreatedAt)
	assert.Equal(t, now, *p.CreatedAt)
}

func TestNewSiteInfo_AreaOrdering(t *testing.T) {
	small := NewSiteInfo("fountain", 47.6090, -122.3420, 47.6092, -122.3418)
	large := NewSiteInfo("park", 47.6080, -122.3440, 47.6100, -122.3400)

	assert.Less(t, small.Area, large.Area)
}
