package overpass

import (
	"log/slog"
	"sort"

	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// sitesOf scans every named element, classifies it with the site heuristics
// and returns the survivors deduplicated by name, ranked by bounding-box
// area ascending. The smallest enclosing feature is the most specific and
// ends up as the primary site.
func sitesOf(logger *slog.Logger, elements []element) []types.SiteInfo {
	var sites []types.SiteInfo
	seen := map[string]bool{}

	for _, el := range elements {
		name := el.name()
		if name == nil {
			continue
		}

		shortName := *name
		if el.Tags["amenity"] == "university" {
			if sn, ok := el.Tags["short_name"]; ok {
				shortName = sn
			}
		}

		if !isSite(logger, el) || seen[shortName] {
			continue
		}
		seen[shortName] = true
		sites = append(sites, types.NewSiteInfo(shortName,
			el.Bounds.MinLat, el.Bounds.MinLon, el.Bounds.MaxLat, el.Bounds.MaxLon))
	}

	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Area < sites[j].Area })
	return sites
}

var siteAmenities = map[string]bool{
	"conference_centre":  true,
	"grave_yard":         true,
	"library":            true,
	"marketplace":        true,
	"place_of_worship":   true,
	"research_institute": true,
	"university":         true,
}

func isSite(logger *slog.Logger, el element) bool {
	site := false
	tourism := el.Tags["tourism"]
	if tourism != "" && tourism != "hotel" {
		site = true
	}

	if !site {
		if _, ok := el.Tags["leisure"]; ok {
			site = true
		}
	}

	if !site {
		if _, ok := el.Tags["historic"]; ok {
			// Aggregate relations are only sites when they describe a
			// building, and hotels never are.
			if el.Type != "relation" || hasTag(el, "building") {
				if tourism != "hotel" {
					site = true
				}
			}
		}
	}

	if !site {
		if amenity, ok := el.Tags["amenity"]; ok {
			// Restaurants short-circuit; there is no point showing them.
			if amenity == "restaurant" {
				return false
			}
			if siteAmenities[amenity] {
				site = true
			}
		}
	}

	if !site {
		landuse := el.Tags["landuse"]
		if landuse == "cemetery" || landuse == "conservation" {
			site = true
		}
	}

	if !site && el.Tags["place"] == "square" {
		site = true
	}

	if !site {
		boundary := el.Tags["boundary"]
		if boundary == "national_park" || boundary == "protected_area" {
			site = true
		}
	}

	if !site {
		if _, ok := el.Tags["railway"]; ok {
			site = true
		}
	}

	if !site && el.Tags["man_made"] == "pier" {
		site = true
	}

	if !site && el.Tags["aeroway"] == "aerodrome" {
		site = true
	}

	// Without bounds there is no area, so the site cannot be ranked.
	if site && el.Bounds == nil {
		logger.Warn("site element has no bounds", slog.Int64("element_id", el.ID))
		return false
	}

	return site
}

func hasTag(el element, key string) bool {
	_, ok := el.Tags[key]
	return ok
}
