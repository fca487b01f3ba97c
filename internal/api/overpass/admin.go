package overpass

// stateOf probes admin levels for the state/province name. Only a few
// countries have a meaningful level-4 subdivision for descriptions; the rest
// probe nothing and yield no state.
func stateOf(countryCode string, elements []element) *string {
	var adminOrder []string
	switch countryCode {
	case "ca", "gb", "mx", "us":
		adminOrder = []string{"4"}
	default:
		return nil
	}

	for _, desiredLevel := range adminOrder {
		for _, el := range elements {
			if el.Tags["admin_level"] != desiredLevel {
				continue
			}
			if name := el.name(); name != nil {
				return name
			}
		}
	}
	return nil
}

// cityOf probes admin levels in a per-country order. Some levels only count
// when the element's place tag (or, in the US, its border_type) matches an
// allowed set; a civil parish without a council_style attribute never counts.
func cityOf(countryCode string, state *string, adminElements []element) *string {
	placeTypes := map[string][]string{}
	var adminOrder []string
	var borderTypes []string

	switch countryCode {
	case "be":
		adminOrder = []string{"9"}
	case "ca":
		adminOrder = []string{"8", "10", "6", "5"}
	case "de":
		adminOrder = []string{"6", "4"}
	case "gb":
		if state != nil && *state == "Scotland" {
			adminOrder = []string{"6", "8", "10"}
		} else {
			adminOrder = []string{"10", "6"}
			placeTypes["6"] = []string{"city"}
		}
	case "is":
		adminOrder = []string{"6"}
	case "mx":
		adminOrder = []string{"8", "10"}
	case "us":
		adminOrder = []string{"8", "10", "6", "5"}
		for _, a := range adminOrder {
			placeTypes[a] = []string{"city", "town"}
		}
		borderTypes = []string{"city", "locality", "town"}
	default:
		adminOrder = []string{"8"}
	}

	for _, desiredLevel := range adminOrder {
		for _, el := range adminElements {
			if el.Tags["admin_level"] != desiredLevel {
				continue
			}
			name := el.name()
			if name == nil {
				continue
			}
			if el.Tags["designation"] == "civil_parish" {
				if _, ok := el.Tags["council_style"]; !ok {
					continue
				}
			}
			if required, ok := placeTypes[desiredLevel]; ok {
				if contains(required, el.Tags["place"]) {
					return name
				}
			} else {
				return name
			}
			if borderTypes != nil && contains(borderTypes, el.Tags["border_type"]) {
				return name
			}
		}
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
