package domain

import "strings"

// DescribeLocation renders a human label for a location, replacing the country
// code with the country name when the lookup knows it. Empty parts are dropped.
func DescribeLocation(loc Location, countries CountryLookup) string {
	country := loc.CountryCode
	if countries != nil && country != "" {
		if c, ok := countries.Country(country); ok && c.Name != "" {
			country = c.Name
		}
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.Province, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ValidCountryCode reports whether code looks like a 2-letter ISO code.
func ValidCountryCode(code string) bool {
	return len(code) == 2
}
