package types

import (
	"strings"
	"time"
)

// Coordinate is a WGS84 point. The json field names double as the wire
// format used by the geo cache store.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Placename is the normalized place description assembled from one or more
// providers. Description is derived at construction and never changes, so
// always build one through NewPlacename rather than with a struct literal.
type Placename struct {
	Sites           []string    `json:"sites,omitempty"`
	Site            *string     `json:"site,omitempty"`
	City            *string     `json:"city,omitempty"`
	State           *string     `json:"state,omitempty"`
	CountryCode     *string     `json:"countryCode,omitempty"`
	CountryName     *string     `json:"countryName,omitempty"`
	Description     string      `json:"description"`
	FullDescription string      `json:"fullDescription"`
	Location        *Coordinate `json:"location,omitempty"`
	CreatedAt       *time.Time  `json:"createdAt,omitempty"`
}

// NewPlacename derives Description from the non-nil members of
// [site, city, state, countryName], joined with ", ". A city that repeats
// the site is suppressed so "Eiffel Tower, Eiffel Tower, France" can never
// be produced.
func NewPlacename(sites []string, site, city, state, countryCode, countryName *string, fullDescription string) Placename {
	if site != nil && city != nil && *site == *city {
		city = nil
	}

	var parts []string
	for _, p := range []*string{site, city, state, countryName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}

	return Placename{
		Sites:           sites,
		Site:            site,
		City:            city,
		State:           state,
		CountryCode:     countryCode,
		CountryName:     countryName,
		Description:     strings.Join(parts, ", "),
		FullDescription: fullDescription,
	}
}

// IsEmpty reports whether no provider contributed anything usable.
func (p Placename) IsEmpty() bool {
	return len(p.Sites) == 0 && p.Site == nil && p.City == nil && p.State == nil &&
		p.CountryCode == nil && p.CountryName == nil && p.FullDescription == ""
}

// StampForPersistence fixes the coordinate and creation time right before the
// placename is written to the merged-result cache.
func (p *Placename) StampForPersistence(coord Coordinate, now time.Time) {
	p.Location = &coord
	p.CreatedAt = &now
}

// SiteInfo is a named point of interest ranked by the planar area of its
// bounding box; smaller area means a more specific feature.
type SiteInfo struct {
	Name string
	Area float64
}

// NewSiteInfo computes the bounding-box area from its corners.
func NewSiteInfo(name string, minLat, minLon, maxLat, maxLon float64) SiteInfo {
	return SiteInfo{Name: name, Area: AreaOf(minLat, minLon, maxLat, maxLon)}
}

// String is a convenience for building optional fields from literals.
func String(s string) *string {
	return &s
}
