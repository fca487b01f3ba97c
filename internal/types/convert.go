package types

import (
	"log/slog"
	"strings"
)

// HomeCountryCode is the country whose name is left off descriptions unless
// the caller explicitly asks for it.
const HomeCountryCode = "us"

// CountryDisplayName maps an ISO-3166 alpha-2 code to the short label used in
// descriptions. Codes without an entry return nil and the provider-supplied
// name is used instead.
func CountryDisplayName(code *string) *string {
	if code == nil {
		return nil
	}
	if name, ok := countryCodeToName[strings.ToLower(*code)]; ok {
		return &name
	}
	return nil
}

var countryCodeToName = map[string]string{
	"us": "USA",
}

// StateNameToCode converts a full state/province name to its postal code for
// the countries we have tables for. Unknown names are passed through
// unchanged with a warning so the gap shows up in logs rather than as a
// missing field.
func StateNameToCode(countryCode string, stateName *string) *string {
	if stateName == nil {
		return nil
	}
	stateMap, ok := stateNamesByCountry[strings.ToLower(countryCode)]
	if !ok {
		return stateName
	}
	code, ok := stateMap[strings.ToLower(*stateName)]
	if !ok {
		slog.Warn("no state code mapping", "country", countryCode, "state", *stateName)
		return stateName
	}
	return &code
}

var stateNamesByCountry = map[string]map[string]string{
	"ca": {
		"alberta":                   "AB",
		"british columbia":          "BC",
		"manitoba":                  "MB",
		"new brunswick":             "NB",
		"newfoundland and labrador": "NL",
		"northwest territories":     "NT",
		"nova scotia":               "NS",
		"nunavut":                   "NU",
		"ontario":                   "ON",
		"prince edward island":      "PE",
		"quebec":                    "QC",
		"saskatchewan":              "SK",
		"yukon":                     "YT",
	},
	"us": {
		"alabama":              "AL",
		"alaska":               "AK",
		"arizona":              "AZ",
		"arkansas":             "AR",
		"california":           "CA",
		"colorado":             "CO",
		"connecticut":          "CT",
		"delaware":             "DE",
		"district of columbia": "DC",
		"florida":              "FL",
		"georgia":              "GA",
		"hawaii":               "HI",
		"idaho":                "ID",
		"illinois":             "IL",
		"indiana":              "IN",
		"iowa":                 "IA",
		"kansas":               "KS",
		"kentucky":             "KY",
		"louisiana":            "LA",
		"maine":                "ME",
		"maryland":             "MD",
		"massachusetts":        "MA",
		"michigan":             "MI",
		"minnesota":            "MN",
		"mississippi":          "MS",
		"missouri":             "MO",
		"montana":              "MT",
		"nebraska":             "NE",
		"nevada":               "NV",
		"new hampshire":        "NH",
		"new jersey":           "NJ",
		"new mexico":           "NM",
		"new york":             "NY",
		"north carolina":       "NC",
		"north dakota":         "ND",
		"ohio":                 "OH",
		"oklahoma":             "OK",
		"oregon":               "OR",
		"pennsylvania":         "PA",
		"rhode island":         "RI",
		"south carolina":       "SC",
		"south dakota":         "SD",
		"tennessee":            "TN",
		"texas":                "TX",
		"utah":                 "UT",
		"vermont":              "VT",
		"virginia":             "VA",
		"washington":           "WA",
		"west virginia":        "WV",
		"wisconsin":            "WI",
		"wyoming":              "WY",
	},
}
