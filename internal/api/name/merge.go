package name

import (
	"strings"

	"github.com/FACorreiaa/go-place-lookup/internal/api/foursquare"
	"github.com/FACorreiaa/go-place-lookup/internal/api/opencage"
	"github.com/FACorreiaa/go-place-lookup/internal/types"
)

// Countries whose state is never included, whatever the providers say.
var noStateCountries = map[string]bool{"be": true, "mx": true}

// Country where the address-lookup municipality is never trusted.
const distrustMunicipalityCountry = "mx"

// Merge deterministically selects the best field values from the
// per-provider candidates. It is a pure function: no I/O, no errors, and
// identical inputs always produce an identical placename. The steps run in
// a fixed order because later ones depend on earlier results.
func Merge(candidates Candidates, includeCountryName bool) types.Placename {
	boundary := candidates[ProviderOverpass]
	address := candidates[ProviderAzure]
	venues := candidates[ProviderFoursquare]
	region := candidates[ProviderOpenCage]

	countryCode := bestCountryCode(boundary, address, venues)
	city := bestCity(boundary, address, venues, region, countryCode)
	state := bestState(boundary, address, region, countryCode)
	countryName := bestCountryName(boundary, address, countryCode, includeCountryName)
	sites, site := bestSites(boundary, venues, region, city)
	fullDescription := bestFullDescription(boundary, address, region)

	// Avoid the redundant "Eiffel Tower, Eiffel Tower, France" shape.
	if site != nil && city != nil && *site == *city {
		city = nil
	}

	return types.NewPlacename(sites, site, city, state, countryCode, countryName, fullDescription)
}

// bestCountryCode prefers the boundary hierarchy, which reflects the
// enclosing country rather than a nearby venue's.
func bestCountryCode(boundary, address, venues Candidate) *string {
	code := firstNonNil(
		boundary.Placename.CountryCode,
		address.Placename.CountryCode,
		venues.Placename.CountryCode,
	)
	if code == nil {
		return nil
	}
	lowered := strings.ToLower(*code)
	return &lowered
}

// bestCity takes a boundary-hierarchy city unconditionally when present: it
// means "in", not "near". Only without one do the proximity-based providers
// get a vote.
func bestCity(boundary, address, venues, region Candidate, countryCode *string) *string {
	if boundary.Placename.City != nil {
		return boundary.Placename.City
	}

	var options []*string
	if countryCode == nil || *countryCode != distrustMunicipalityCountry {
		options = append(options, address.Placename.City)
	}
	options = append(options, foursquare.CityVote(venues.Raw))
	if components, ok := opencage.ParseComponents(region.Raw); ok {
		options = append(options, components.City)
	}
	return firstNonNil(options...)
}

// bestState prefers a structured state code. Great Britain also accepts the
// full state name and the address-lookup subdivision; a fixed set of
// countries never gets a state at all.
func bestState(boundary, address, region Candidate, countryCode *string) *string {
	cc := ""
	if countryCode != nil {
		cc = *countryCode
	}
	if noStateCountries[cc] {
		return nil
	}

	components, _ := opencage.ParseComponents(region.Raw)

	options := []*string{boundary.Placename.State}
	if components != nil {
		options = append(options, components.StateCode)
	}
	if cc == "gb" {
		if components != nil {
			options = append(options, components.State)
		}
		options = append(options, address.Placename.State)
	}
	return firstNonNil(options...)
}

// bestCountryName suppresses the home country unless explicitly requested,
// in which case a fixed label is used instead of whatever a provider says.
func bestCountryName(boundary, address Candidate, countryCode *string, includeCountryName bool) *string {
	if countryCode == nil {
		return address.Placename.CountryName
	}
	if *countryCode == types.HomeCountryCode {
		if includeCountryName {
			return types.CountryDisplayName(countryCode)
		}
		return nil
	}
	return firstNonNil(boundary.Placename.CountryName, address.Placename.CountryName)
}

// bestSites: boundary-hierarchy sites win outright. Otherwise the region
// detail components are scanned in a fixed priority order, then the closest
// acceptable venue. Paths and cycleways only count when the chosen "city" is
// really the county, which marks a point outside any actual city.
func bestSites(boundary, venues, region Candidate, city *string) ([]string, *string) {
	if len(boundary.Placename.Sites) > 0 {
		return boundary.Placename.Sites, boundary.Placename.Site
	}

	var options []*string
	components, ok := opencage.ParseComponents(region.Raw)
	if ok {
		options = append(options, components.SiteComponents()...)
		if city != nil && components.County != nil && *components.County == *city {
			options = append(options, components.Cycleway, components.Path, components.Footway)
		}
	}
	options = append(options, venues.Placename.Site)

	site := firstNonNil(options...)
	if site == nil {
		return nil, nil
	}
	return []string{*site}, site
}

func bestFullDescription(boundary, address, region Candidate) string {
	for _, description := range []string{
		boundary.Placename.FullDescription,
		address.Placename.FullDescription,
		region.Placename.FullDescription,
	} {
		if description != "" {
			return description
		}
	}
	return ""
}

func firstNonNil(options ...*string) *string {
	for _, o := range options {
		if o != nil && *o != "" {
			return o
		}
	}
	return nil
}
