package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersBetween(t *testing.T) {
	// Same point
	assert.Zero(t, MetersBetween(47.6, -122.3, 47.6, -122.3))

	// Seattle to Portland is roughly 233 km
	d := MetersBetween(47.6062, -122.3321, 45.5152, -122.6784)
	assert.InDelta(t, 233000, d, 3000)

	// Symmetric
	assert.InDelta(t, d, MetersBetween(45.5152, -122.6784, 47.6062, -122.3321), 0.001)
}

func TestAreaOf(t *testing.T) {
	area := AreaOf(47.6080, -122.3440, 47.6100, -122.3400)
	assert.Greater(t, area, 0.0)

	// Degenerate box has zero area
	assert.Zero(t, AreaOf(47.6, -122.3, 47.6, -122.3))
}

func TestStateNameToCode(t *testing.T) {
	assert.Equal(t, "WA", *StateNameToCode("us", String("Washington")))
	assert.Equal(t, "BC", *StateNameToCode("ca", String("British Columbia")))

	// Unknown state passes through unchanged
	assert.Equal(t, "Atlantis", *StateNameToCode("us", String("Atlantis")))

	// Countries without a table pass through
	assert.Equal(t, "Bavaria", *StateNameToCode("de", String("Bavaria")))

	assert.Nil(t, StateNameToCode("us", nil))
}

func TestCountryDisplayName(t *testing.T) {
	assert.Equal(t, "USA", *CountryDisplayName(String("us")))
	assert.Equal(t, "USA", *CountryDisplayName(String("US")))
	assert.Nil(t, CountryDisplayName(String("fr")))
	assert.Nil(t, CountryDisplayName(nil))
}
