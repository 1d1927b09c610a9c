package provider

import (
	"maps"
	"slices"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

// Dates returns every known date, sorted ascending.
func (p *Provider) Dates() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.dates))
}

// LatestDate returns the most recent known date, or "" when none is known.
func (p *Provider) LatestDate() string {
	dates := p.Dates()
	if len(dates) == 0 {
		return ""
	}
	return dates[len(dates)-1]
}

// Country looks up a country by its 2-letter code.
func (p *Provider) Country(code string) (domain.Country, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.countries[code]
	return c, ok
}

// CountryByName looks up a country by its display name.
func (p *Provider) CountryByName(name string) (domain.Country, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.countriesByName[name]
	return c, ok
}

// Countries returns all known countries sorted by code.
func (p *Provider) Countries() []domain.Country {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Country, 0, len(p.countries))
	for _, c := range p.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// AggregateData returns the per-country cumulative data, or nil when it has
// not been loaded. The result must not be modified.
func (p *Provider) AggregateData() domain.AggregateData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.aggregate
}

// AggregateDates returns the dates with aggregate records, sorted ascending.
func (p *Provider) AggregateDates() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.aggregate))
}

// LatestDateWithAggregateData reports the newest aggregate date.
func (p *Provider) LatestDateWithAggregateData() (string, bool) {
	dates := p.AggregateDates()
	if len(dates) == 0 {
		return "", false
	}
	return dates[len(dates)-1], true
}

// LatestAggregateData returns the records of the newest aggregate date.
func (p *Provider) LatestAggregateData() ([]domain.AggregateRecord, bool) {
	date, ok := p.LatestDateWithAggregateData()
	if !ok {
		return nil, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.aggregate[date], true
}

// LatestDataPerCountry maps country codes to their newest cumulative
// confirmed count. The map is computed once per aggregate load.
func (p *Provider) LatestDataPerCountry() (map[string]int, bool) {
	records, ok := p.LatestAggregateData()
	if !ok {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latestPerCountry == nil {
		latest := make(map[string]int, len(records))
		for _, r := range records {
			latest[r.Code] = r.CumConf
		}
		p.latestPerCountry = latest
	}
	return maps.Clone(p.latestPerCountry), true
}

// CountryFeaturesForDay returns per-country totals for date, or nil.
func (p *Provider) CountryFeaturesForDay(date string) map[string]domain.Totals {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.countryByDay[date])
}

// ProvinceFeaturesForDay returns per-province totals for date, or nil.
func (p *Provider) ProvinceFeaturesForDay(date string) map[string]domain.Totals {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.provinceByDay[date])
}

// AtomicFeaturesForDay returns the formatted features of date, or nil.
// The features must not be modified.
func (p *Provider) AtomicFeaturesForDay(date string) []*geojson.Feature {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.atomicByDay[date])
}

// AtomicFeaturesByDay returns every loaded day's formatted features.
func (p *Provider) AtomicFeaturesByDay() map[string][]*geojson.Feature {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.atomicByDay)
}

// LatestCounts returns the global summary once it has been fetched.
func (p *Provider) LatestCounts() (domain.LatestCounts, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latestCounts == nil {
		return domain.LatestCounts{}, false
	}
	return *p.latestCounts, true
}

// Location returns the location metadata of geoid.
func (p *Provider) Location(geoid string) (domain.Location, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loc, ok := p.locations[geoid]
	return loc, ok
}

// SliceNames returns the slice file names from the index, newest first.
func (p *Provider) SliceNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.sliceNames)
}
