// Command genmock writes a deterministic mock data directory with the same
// layout as the published case data: latestCounts.json, countries.data,
// location_info.data, aggregate.json, d/index.txt, d/<date>.json and
// c/<code>.json. Serve the directory over HTTP and point DATA_BASE_URL and
// COUNTRIES_URL at it to run the service offline.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -days 21 -seed 7 \
//	  -snapshots data/mock/snapshots.jsonl
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

// place is a mock location; seed is its count on the first day.
type place struct {
	geoid    string
	city     string
	province string
	code     string
	seed     int
}

var countries = []domain.Country{
	{Continent: "E", Code: "FR", Name: "France", Population: 67000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{-5.1, 41.3}, Max: orb.Point{9.6, 51.1}}}},
	{Continent: "E", Code: "IT", Name: "Italy", Population: 60000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{6.6, 35.5}, Max: orb.Point{18.5, 47.1}}}},
	{Continent: "N", Code: "US", Name: "United States", Population: 330000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{-125, 24.4}, Max: orb.Point{-66.9, 49.4}}, {Min: orb.Point{-170, 51}, Max: orb.Point{-130, 71.4}}}},
	{Continent: "S", Code: "BR", Name: "Brazil", Population: 212000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{-74, -33.8}, Max: orb.Point{-34.8, 5.3}}}},
	{Continent: "A", Code: "KR", Name: "South Korea", Population: 51000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{125.9, 33.1}, Max: orb.Point{129.6, 38.6}}}},
	{Continent: "O", Code: "AU", Name: "Australia", Population: 25000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{113.3, -43.6}, Max: orb.Point{153.6, -10.7}}}},
	{Continent: "P", Code: "EG", Name: "Egypt", Population: 100000000,
		BoundingBoxes: []orb.Bound{{Min: orb.Point{24.7, 22}, Max: orb.Point{36.9, 31.7}}}},
}

var places = []place{
	{geoid: "48.85|2.35", city: "Paris", province: "Ile-de-France", code: "FR", seed: 120},
	{geoid: "45.76|4.83", city: "Lyon", province: "Auvergne-Rhone-Alpes", code: "FR", seed: 30},
	{geoid: "45.46|9.19", city: "Milan", province: "Lombardia", code: "IT", seed: 400},
	{geoid: "41.9|12.5", city: "Rome", province: "Lazio", code: "IT", seed: 20},
	{geoid: "40.71|-74.01", city: "New York", province: "New York", code: "US", seed: 80},
	{geoid: "47.61|-122.33", city: "Seattle", province: "Washington", code: "US", seed: 60},
	{geoid: "-23.55|-46.63", city: "Sao Paulo", province: "Sao Paulo", code: "BR", seed: 5},
	{geoid: "35.87|128.6", city: "Daegu", province: "Daegu", code: "KR", seed: 900},
	{geoid: "-33.87|151.21", city: "Sydney", province: "New South Wales", code: "AU", seed: 10},
	{geoid: "30.04|31.24", city: "Cairo", province: "Cairo", code: "EG", seed: 3},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the mock data files")
	days := flag.Int("days", 14, "number of daily slices to generate")
	start := flag.String("start", "2020-03-01", "first date (YYYY-MM-DD)")
	seed := flag.Uint64("seed", 42, "random seed")
	snapshots := flag.String("snapshots", "", "optional output path for day snapshots as JSON lines")
	flag.Parse()

	if *out == "" || *days < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -days >= 1")
	}
	first, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(first.AddDate(0, 0, *days).Add(6 * time.Hour)))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed))
	d := generate(rng, first, *days)

	files := map[string]any{
		"latestCounts.json": []domain.LatestCounts{d.latest},
		"aggregate.json":    d.aggregate,
	}
	for _, s := range d.slices {
		files["d/"+s.Date+".json"] = sliceDocument(s)
	}
	for code, series := range d.countrySeries {
		files["c/"+code+".json"] = map[string]any{"code": code, "series": series}
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(*out, name), v); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	text := map[string]string{
		"countries.data":     countriesText(),
		"location_info.data": locationsText(),
		"d/index.txt":        strings.Join(d.index, "\n") + "\n",
	}
	for name, body := range text {
		if err := writeFile(filepath.Join(*out, name), []byte(body)); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	log.Printf("wrote %d slices, %d countries, %d locations to %s", len(d.slices), len(countries), len(places), *out)

	if *snapshots != "" {
		n, err := writeSnapshots(*snapshots, d)
		if err != nil {
			return fmt.Errorf("writing snapshots: %w", err)
		}
		log.Printf("wrote %d snapshots to %s", n, *snapshots)
	}

	printStats(d)
	return nil
}

type dataset struct {
	slices        []domain.DailySlice
	index         []string
	aggregate     domain.AggregateData
	latest        domain.LatestCounts
	countrySeries map[string]map[string]int
	countryTotals map[string]map[string]domain.Totals
}

// generate grows every place's count by a random daily rate between 5% and 35%.
func generate(rng *rand.Rand, first time.Time, days int) dataset {
	d := dataset{
		aggregate:     make(domain.AggregateData),
		countrySeries: make(map[string]map[string]int),
		countryTotals: make(map[string]map[string]domain.Totals),
	}
	totals := make([]int, len(places))
	for i, p := range places {
		totals[i] = p.seed
	}

	for day := range days {
		date := first.AddDate(0, 0, day).Format(time.DateOnly)
		slice := domain.DailySlice{Date: date}
		byCountry := make(map[string]domain.Totals)

		for i, p := range places {
			prev := totals[i]
			if day > 0 {
				totals[i] = prev + int(float64(prev)*(0.05+rng.Float64()*0.3)) + 1
			}
			f := domain.Feature{Geoid: p.geoid, Total: totals[i], New: totals[i] - prev}
			slice.Features = append(slice.Features, f)

			t := byCountry[p.code]
			t.Add(f)
			byCountry[p.code] = t
		}

		codes := make([]string, 0, len(byCountry))
		for code := range byCountry {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		var cases, deaths int
		for _, code := range codes {
			t := byCountry[code]
			rec := domain.AggregateRecord{Code: code, CumConf: t.Total, CumDeaths: t.Total / 40}
			d.aggregate[date] = append(d.aggregate[date], rec)
			if d.countrySeries[code] == nil {
				d.countrySeries[code] = make(map[string]int)
			}
			d.countrySeries[code][date] = t.Total
			cases += rec.CumConf
			deaths += rec.CumDeaths
		}

		d.slices = append(d.slices, slice)
		d.countryTotals[date] = byCountry
		d.index = append([]string{date + ".json"}, d.index...)
		d.latest = domain.LatestCounts{CaseCount: cases, Deaths: deaths, Date: date}
	}
	return d
}

// sliceDocument renders a slice as the published GeoJSON-like document.
func sliceDocument(s domain.DailySlice) map[string]any {
	features := make([]map[string]any, 0, len(s.Features))
	for _, f := range s.Features {
		features = append(features, map[string]any{
			"type": "Feature",
			"properties": map[string]any{
				"geoid": f.Geoid,
				"total": f.Total,
				"new":   f.New,
			},
		})
	}
	return map[string]any{"date": s.Date, "type": "FeatureCollection", "features": features}
}

func countriesText() string {
	var b strings.Builder
	for _, c := range countries {
		boxes := make([]string, 0, len(c.BoundingBoxes))
		for _, bb := range c.BoundingBoxes {
			boxes = append(boxes, fmt.Sprintf("%g,%g,%g,%g", bb.Min.Lon(), bb.Min.Lat(), bb.Max.Lon(), bb.Max.Lat()))
		}
		fmt.Fprintf(&b, "%s:%s:%s:%d:%s\n", c.Continent, c.Code, c.Name, c.Population, strings.Join(boxes, "|"))
	}
	return b.String()
}

func locationsText() string {
	var b strings.Builder
	for _, p := range places {
		fmt.Fprintf(&b, "%s:%s|%s|%s\n", p.geoid, p.city, p.province, p.code)
	}
	return b.String()
}

func writeSnapshots(path string, d dataset) (int, error) {
	var (
		b strings.Builder
		n int
	)
	for _, s := range d.slices {
		for _, snap := range domain.BuildSnapshots(s.Date, d.countryTotals[s.Date]) {
			data, err := domain.SerializeSnapshot(snap)
			if err != nil {
				return 0, err
			}
			b.Write(data)
			b.WriteByte('\n')
			n++
		}
	}
	return n, writeFile(path, []byte(b.String()))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(d dataset) {
	fmt.Println("\n=== Mock Data Statistics ===")
	fmt.Printf("Dates: %s .. %s\n", d.slices[0].Date, d.latest.Date)
	fmt.Printf("Latest: %d cases, %d deaths\n", d.latest.CaseCount, d.latest.Deaths)

	fmt.Println("\nBy country (latest):")
	for _, rec := range d.aggregate[d.latest.Date] {
		fmt.Printf("  %s: %d cases, %d deaths\n", rec.Code, rec.CumConf, rec.CumDeaths)
	}
}
