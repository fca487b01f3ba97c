package overpass

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const countryAdminLevel = "2"

// response models only the parts of an Overpass payload this adapter reads.
// Re-marshalling it is also the compaction step: unmodeled fields, notably
// the bulky geometry arrays, do not survive the round trip.
type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type,omitempty"`
	ID     int64             `json:"id,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
	Bounds *bounds           `json:"bounds,omitempty"`
}

type bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// name prefers the English name over the local one.
func (e element) name() *string {
	if n, ok := e.Tags["name:en"]; ok {
		return &n
	}
	if n, ok := e.Tags["name"]; ok {
		return &n
	}
	return nil
}

func (e element) adminLevel() (int, bool) {
	level, ok := e.Tags["admin_level"]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(level)
	if err != nil {
		return 0, false
	}
	return n, true
}

// usableAdminElements filters to elements that carry an admin level — and,
// for country-level ones, a recognizable ISO code — sorted ascending by
// level so larger regions come first.
func usableAdminElements(elements []element) []element {
	var usable []element
	for _, el := range elements {
		if _, ok := el.adminLevel(); !ok {
			continue
		}
		if el.Tags["admin_level"] == countryAdminLevel {
			if _, ok := el.Tags["ISO3166-1:alpha2"]; !ok {
				if _, ok := el.Tags["ISO3166-1"]; !ok {
					continue
				}
			}
		}
		usable = append(usable, el)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		a, _ := usable[i].adminLevel()
		b, _ := usable[j].adminLevel()
		return a < b
	})
	return usable
}

// compact strips internationalized name variants other than English and
// re-marshals through the typed projection, dropping geometry and other
// fields the adapter never reads.
func compact(decoded response) (json.RawMessage, error) {
	for i := range decoded.Elements {
		tags := decoded.Elements[i].Tags
		for key := range tags {
			if isIgnoredTag(key) {
				delete(tags, key)
			}
		}
	}

	raw, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("compact overpass response: %w", err)
	}
	return raw, nil
}

var localizedTagPrefixes = []string{
	"name:", "alt_name:", "official_name:", "old_name:", "old_short_name:", "short_name:",
}

func isIgnoredTag(key string) bool {
	for _, prefix := range localizedTagPrefixes {
		if strings.HasPrefix(key, prefix) && !strings.HasSuffix(key, ":en") {
			return true
		}
	}
	return false
}
