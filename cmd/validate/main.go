// Command validate performs integrity checks on a case data directory laid
// out like the published data (see cmd/genmock). It parses every file with
// the service's own parsers and verifies cross-file consistency: slice dates,
// geoid coverage, country codes, cumulative monotonicity, and that slice
// roll-ups agree with the aggregate file.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/mock
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/view/rank"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// data is everything loaded from the directory.
type data struct {
	countries map[string]domain.Country
	skipped   int
	locations map[string]domain.Location
	index     []string
	slices    map[string]domain.DailySlice // by index name
	aggregate domain.AggregateData
	latest    domain.LatestCounts
}

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the case data files")
	countriesPath := flag.String("countries", "", "path to countries.data (default <data-dir>/countries.data)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *countriesPath == "" {
		*countriesPath = filepath.Join(*dataDir, "countries.data")
	}

	if code := run(*dataDir, *countriesPath); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, countriesPath string) int {
	fmt.Println("=== Case Data Integrity Validation ===")
	fmt.Println()

	d, loadPhase := load(dataDir, countriesPath)

	// ── Run validation phases ──
	phases := []*phase{
		loadPhase,
		validateCountries(d),
		validateLocations(d),
		validateSlices(d),
		validateAggregate(d),
		validateCrossSource(d),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Files: %d countries, %d locations, %d slices, %d aggregate dates\n",
		len(d.countries), len(d.locations), len(d.slices), len(d.aggregate))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func load(dir, countriesPath string) (*data, *phase) {
	p := &phase{name: "Load and parse"}
	d := &data{
		countries: make(map[string]domain.Country),
		locations: make(map[string]domain.Location),
		slices:    make(map[string]domain.DailySlice),
	}

	if text, err := os.ReadFile(countriesPath); err != nil {
		p.errorf("countries: %v", err)
	} else {
		list, skipped := domain.ParseCountries(string(text))
		d.skipped = skipped
		for _, c := range list {
			if _, dup := d.countries[c.Code]; dup {
				p.errorf("countries: duplicate code %s", c.Code)
			}
			d.countries[c.Code] = c
		}
	}

	if text, err := os.ReadFile(filepath.Join(dir, "location_info.data")); err != nil {
		p.errorf("location_info.data: %v", err)
	} else {
		d.locations = domain.ParseLocationInfo(string(text))
	}

	if text, err := os.ReadFile(filepath.Join(dir, "d", "index.txt")); err != nil {
		p.errorf("d/index.txt: %v", err)
	} else {
		d.index = domain.ParseSliceIndex(string(text))
	}
	for _, name := range d.index {
		raw, err := os.ReadFile(filepath.Join(dir, "d", name))
		if err != nil {
			p.errorf("d/%s: %v", name, err)
			continue
		}
		slice, err := domain.ParseSlice(raw)
		if err != nil {
			p.errorf("d/%s: %v", name, err)
			continue
		}
		d.slices[name] = slice
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "aggregate.json")); err != nil {
		p.errorf("aggregate.json: %v", err)
	} else if d.aggregate, err = domain.ParseAggregate(raw); err != nil {
		p.errorf("aggregate.json: %v", err)
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "latestCounts.json")); err != nil {
		p.errorf("latestCounts.json: %v", err)
	} else if d.latest, err = domain.ParseLatestCounts(raw); err != nil {
		p.errorf("latestCounts.json: %v", err)
	}
	return d, p
}

// ── Phases ──

func validateCountries(d *data) *phase {
	p := &phase{name: "Country table"}
	if d.skipped > 0 {
		p.errorf("%d malformed lines", d.skipped)
	}
	for _, code := range sortedKeys(d.countries) {
		c := d.countries[code]
		if !domain.ValidCountryCode(c.Code) {
			p.errorf("%s: code is not 2 characters", c.Code)
		}
		if _, ok := rank.ContinentColors[c.Continent]; !ok {
			p.errorf("%s: unknown continent %q", c.Code, c.Continent)
		}
		if c.Population <= 0 {
			p.errorf("%s: population is %d", c.Code, c.Population)
		}
		if len(c.BoundingBoxes) == 0 {
			p.errorf("%s: no bounding box", c.Code)
		}
	}
	return p
}

func validateLocations(d *data) *phase {
	p := &phase{name: "Location metadata"}
	for _, geoid := range sortedKeys(d.locations) {
		loc := d.locations[geoid]
		if !strings.Contains(geoid, "|") {
			p.errorf("%s: geoid is not lat|lng", geoid)
		}
		lat, lng := domain.ParseGeoid(geoid)
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			p.errorf("%s: coordinates out of range", geoid)
		}
		if !domain.ValidCountryCode(loc.CountryCode) {
			p.errorf("%s: invalid country code %q", geoid, loc.CountryCode)
			continue
		}
		if _, ok := d.countries[loc.CountryCode]; !ok {
			p.errorf("%s: unknown country %s", geoid, loc.CountryCode)
		}
	}
	return p
}

func validateSlices(d *data) *phase {
	p := &phase{name: "Daily slices"}
	if len(d.index) == 0 {
		p.errorf("index is empty")
	}

	seen := make(map[string]bool)
	prev := ""
	for _, name := range d.index {
		if seen[name] {
			p.errorf("index lists %s twice", name)
		}
		seen[name] = true

		slice, ok := d.slices[name]
		if !ok {
			continue
		}
		if want := strings.TrimSuffix(name, ".json"); slice.Date != want {
			p.errorf("%s: date is %q", name, slice.Date)
		}
		if prev != "" && slice.Date >= prev {
			p.errorf("%s: index is not newest first", name)
		}
		prev = slice.Date

		for _, f := range slice.Features {
			if f.Geoid == domain.PlaceholderGeoid {
				p.errorf("%s: feature without properties", name)
				continue
			}
			if _, ok := d.locations[f.Geoid]; !ok {
				p.errorf("%s: geoid %s has no location", name, f.Geoid)
			}
			if f.New > f.Total {
				p.errorf("%s: %s new %d exceeds total %d", name, f.Geoid, f.New, f.Total)
			}
		}
	}
	return p
}

func validateAggregate(d *data) *phase {
	p := &phase{name: "Aggregate data"}
	dates := sortedKeys(d.aggregate)
	last := make(map[string]domain.AggregateRecord)
	for _, date := range dates {
		for _, rec := range d.aggregate[date] {
			if _, ok := d.countries[rec.Code]; !ok {
				p.errorf("%s: unknown country %s", date, rec.Code)
			}
			if rec.CumDeaths > rec.CumConf {
				p.errorf("%s %s: deaths %d exceed cases %d", date, rec.Code, rec.CumDeaths, rec.CumConf)
			}
			if prev, ok := last[rec.Code]; ok && (rec.CumConf < prev.CumConf || rec.CumDeaths < prev.CumDeaths) {
				p.errorf("%s %s: cumulative counts decreased", date, rec.Code)
			}
			last[rec.Code] = rec
		}
	}
	return p
}

// validateCrossSource checks that each slice rolls up to the aggregate file
// and that the summary matches the newest aggregate date.
func validateCrossSource(d *data) *phase {
	p := &phase{name: "Cross-source consistency"}

	for _, name := range d.index {
		slice, ok := d.slices[name]
		if !ok {
			continue
		}
		records, ok := d.aggregate[slice.Date]
		if !ok {
			p.errorf("%s: date missing from aggregate", slice.Date)
			continue
		}
		rolled := make(map[string]int)
		for _, f := range slice.Features {
			if loc, ok := d.locations[f.Geoid]; ok {
				rolled[loc.CountryCode] += f.Total
			}
		}
		for _, rec := range records {
			if rolled[rec.Code] != rec.CumConf {
				p.errorf("%s %s: slice total %d, aggregate %d", slice.Date, rec.Code, rolled[rec.Code], rec.CumConf)
			}
		}
	}

	dates := sortedKeys(d.aggregate)
	if len(dates) == 0 {
		return p
	}
	newest := dates[len(dates)-1]
	if d.latest.Date != newest {
		p.errorf("latestCounts date %q, newest aggregate date %q", d.latest.Date, newest)
	}
	var cases, deaths int
	for _, rec := range d.aggregate[newest] {
		cases += rec.CumConf
		deaths += rec.CumDeaths
	}
	if d.latest.CaseCount != cases {
		p.errorf("latestCounts caseCount %d, aggregate sum %d", d.latest.CaseCount, cases)
	}
	if d.latest.Deaths != deaths {
		p.errorf("latestCounts deaths %d, aggregate sum %d", d.latest.Deaths, deaths)
	}
	return p
}

// ── Helpers ──

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
