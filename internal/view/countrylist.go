package view

import (
	"sort"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

// CountryEntry is one row of the sidebar country list.
type CountryEntry struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// BuildCountryList ranks countries by their latest count, descending. With
// perCapita set, values are cases per 1000 inhabitants and countries without
// a known population are left out. Codes missing from the lookup are skipped.
func BuildCountryList(latest map[string]int, countries domain.CountryLookup, perCapita bool) []CountryEntry {
	out := make([]CountryEntry, 0, len(latest))
	for code, count := range latest {
		c, ok := countries.Country(code)
		if !ok {
			continue
		}
		e := CountryEntry{Code: code, Name: c.Name, Count: count, Value: float64(count)}
		if perCapita {
			if c.Population <= 0 {
				continue
			}
			e.Value = float64(count) / float64(c.Population) * 1000
			e.Display = FormatDecimal(e.Value, 3)
		} else {
			e.Display = FormatCount(count)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Code < out[j].Code
	})
	return out
}
