// Package provider loads the case data files and keeps the derived per-day
// state that every view reads from.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/observability"
)

// Resource labels used for fetch metrics and logs.
const (
	resLatestCounts = "latest_counts"
	resCountries    = "countries"
	resIndex        = "index"
	resLocations    = "locations"
	resAggregate    = "aggregate"
	resSlice        = "slice"
	resCountry      = "country"
)

// ErrInvalidCountryCode rejects codes that are not two upper-case letters.
var ErrInvalidCountryCode = errors.New("invalid country code")

// Options configures a Provider.
type Options struct {
	BaseURL      string // must end with "/"
	CountriesURL string
	Mode         domain.RenderMode
	Concurrency  int
}

// Provider is the single data source shared by all views. Fetch methods may
// run concurrently; accessors return copies or read-only values.
type Provider struct {
	live    domain.Source
	slices  domain.Source
	opts    Options
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
	ready   atomic.Bool

	mu               sync.RWMutex
	latestCounts     *domain.LatestCounts
	countries        map[string]domain.Country
	countriesByName  map[string]domain.Country
	sliceNames       []string
	locations        map[string]domain.Location
	aggregate        domain.AggregateData
	latestPerCountry map[string]int
	dates            map[string]struct{}
	countryByDay     map[string]map[string]domain.Totals
	provinceByDay    map[string]map[string]domain.Totals
	atomicByDay      map[string][]*geojson.Feature
}

// New creates a Provider. live serves uncached fetches; slices serves
// non-newest daily slices and is normally an LRU-cached wrapper of live.
func New(live, slices domain.Source, opts Options, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Provider {
	if slices == nil {
		slices = live
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Provider{
		live:            live,
		slices:          slices,
		opts:            opts,
		clock:           clock,
		metrics:         metrics,
		logger:          logger,
		countries:       make(map[string]domain.Country),
		countriesByName: make(map[string]domain.Country),
		locations:       make(map[string]domain.Location),
		dates:           make(map[string]struct{}),
		countryByDay:    make(map[string]map[string]domain.Totals),
		provinceByDay:   make(map[string]map[string]domain.Totals),
		atomicByDay:     make(map[string][]*geojson.Feature),
	}
}

// Mode reports the geometry mode features are formatted with.
func (p *Provider) Mode() domain.RenderMode {
	return p.opts.Mode
}

// FetchInitialData fetches latest counts, the country table, the slice index
// and location metadata concurrently. It fails if any of them fails.
func (p *Provider) FetchInitialData(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.FetchLatestCounts(ctx) })
	g.Go(func() error { return p.FetchCountryNames(ctx) })
	g.Go(func() error { return p.FetchDataIndex(ctx) })
	g.Go(func() error { return p.FetchLocationData(ctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch initial data: %w", err)
	}
	p.ready.Store(true)
	p.metrics.ServiceReady.Set(1)
	return nil
}

// CheckReadiness reports whether initial data has been loaded.
func (p *Provider) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("initial data not loaded")
	}
	return nil
}

// FetchLatestCounts reloads the global summary, bypassing caches.
func (p *Provider) FetchLatestCounts(ctx context.Context) error {
	body, err := p.fetch(ctx, p.live, resLatestCounts, p.noCache(p.opts.BaseURL+"latestCounts.json"))
	if err != nil {
		return err
	}
	counts, err := domain.ParseLatestCounts(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.latestCounts = &counts
	p.mu.Unlock()
	return nil
}

// FetchCountryNames loads the country table once.
func (p *Provider) FetchCountryNames(ctx context.Context) error {
	p.mu.RLock()
	loaded := len(p.countries) > 0
	p.mu.RUnlock()
	if loaded {
		p.logger.Debug("countries already loaded")
		return nil
	}

	body, err := p.fetch(ctx, p.live, resCountries, p.opts.CountriesURL)
	if err != nil {
		return err
	}
	countries, skipped := domain.ParseCountries(string(body))
	if skipped > 0 {
		p.logger.Warn("skipped malformed country lines", "count", skipped)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range countries {
		p.countries[c.Code] = c
		p.countriesByName[c.Name] = c
	}
	return nil
}

// FetchDataIndex replaces the list of slice file names, newest first.
func (p *Provider) FetchDataIndex(ctx context.Context) error {
	body, err := p.fetch(ctx, p.live, resIndex, p.opts.BaseURL+"d/index.txt")
	if err != nil {
		return err
	}
	names := dedupe(domain.ParseSliceIndex(string(body)))

	p.mu.Lock()
	p.sliceNames = names
	p.mu.Unlock()
	return nil
}

// FetchLocationData reloads the geoid to location mapping.
func (p *Provider) FetchLocationData(ctx context.Context) error {
	body, err := p.fetch(ctx, p.live, resLocations, p.opts.BaseURL+"location_info.data")
	if err != nil {
		return err
	}
	locations := domain.ParseLocationInfo(string(body))

	p.mu.Lock()
	p.locations = locations
	p.mu.Unlock()
	return nil
}

// FetchAggregateData loads per-country cumulative data once. Its dates join
// the known date set.
func (p *Provider) FetchAggregateData(ctx context.Context) error {
	p.mu.RLock()
	loaded := p.aggregate != nil
	p.mu.RUnlock()
	if loaded {
		p.logger.Debug("aggregate data already loaded")
		return nil
	}

	body, err := p.fetch(ctx, p.live, resAggregate, p.noCache(p.opts.BaseURL+"aggregate.json"))
	if err != nil {
		return err
	}
	data, err := domain.ParseAggregate(body)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.aggregate = data
	p.latestPerCountry = nil
	for date := range data {
		p.dates[date] = struct{}{}
	}
	p.metrics.KnownDates.Set(float64(len(p.dates)))
	return nil
}

// FetchDailySlice fetches and processes one day's file. The newest slice
// skips the slice cache. A non-200 response is not an error: nothing changes
// and the returned date is empty.
func (p *Provider) FetchDailySlice(ctx context.Context, name string, isNewest bool) (string, error) {
	url := p.opts.BaseURL + "d/" + name
	src := p.slices
	if isNewest {
		url = p.noCache(url)
		src = p.live
	}

	body, err := p.fetch(ctx, src, resSlice, url)
	if errors.Is(err, domain.ErrNoData) {
		p.logger.Debug("daily slice unavailable", "slice", name)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	slice, err := domain.ParseSlice(body)
	if err != nil {
		return "", fmt.Errorf("slice %s: %w", name, err)
	}
	p.ProcessDailySlice(slice, isNewest)
	return slice.Date, nil
}

// FetchLatestDailySlice fetches the first slice of the index, uncached.
func (p *Provider) FetchLatestDailySlice(ctx context.Context) (string, error) {
	names := p.SliceNames()
	if len(names) == 0 {
		return "", nil
	}
	return p.FetchDailySlice(ctx, names[0], true)
}

// FetchDailySlices fetches every known slice with bounded concurrency and
// calls fn once per completed slice, in completion order. date is empty when
// the slice had no data. Failed slices are logged and skipped.
func (p *Provider) FetchDailySlices(ctx context.Context, fn func(name, date string)) error {
	var (
		g        errgroup.Group
		callback sync.Mutex
		failed   atomic.Int64
	)
	g.SetLimit(p.opts.Concurrency)

	for _, name := range p.SliceNames() {
		g.Go(func() error {
			date, err := p.FetchDailySlice(ctx, name, false)
			if err != nil {
				failed.Add(1)
				p.logger.Warn("daily slice fetch failed", "slice", name, "error", err)
				return nil
			}
			if fn != nil {
				callback.Lock()
				fn(name, date)
				callback.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		p.logger.Warn("some daily slices failed", "failed", n)
	}
	return ctx.Err()
}

// ProcessDailySlice formats every feature and rolls up located features into
// province and country totals for the slice's date. Features whose geoid has
// no location metadata are left out of the totals.
func (p *Provider) ProcessDailySlice(slice domain.DailySlice, isNewest bool) {
	p.mu.RLock()
	locations := p.locations
	p.mu.RUnlock()

	provinces := make(map[string]domain.Totals)
	countries := make(map[string]domain.Totals)
	formatted := make([]*geojson.Feature, 0, len(slice.Features))
	discarded := 0

	for _, f := range slice.Features {
		formatted = append(formatted, domain.FormatFeature(f, p.opts.Mode))

		loc, ok := locations[f.Geoid]
		if !ok {
			discarded++
			continue
		}
		if !domain.ValidCountryCode(loc.CountryCode) {
			p.logger.Warn("invalid country code", "code", loc.CountryCode, "geoid", f.Geoid, "date", slice.Date)
		}
		pt := provinces[loc.Province]
		pt.Add(f)
		provinces[loc.Province] = pt
		ct := countries[loc.CountryCode]
		ct.Add(f)
		countries[loc.CountryCode] = ct
	}

	p.mu.Lock()
	p.dates[slice.Date] = struct{}{}
	p.countryByDay[slice.Date] = countries
	p.provinceByDay[slice.Date] = provinces
	p.atomicByDay[slice.Date] = formatted
	known := len(p.dates)
	p.mu.Unlock()

	p.metrics.SlicesProcessed.Inc()
	p.metrics.FeaturesDiscarded.Add(float64(discarded))
	p.metrics.KnownDates.Set(float64(known))
	p.logger.Debug("processed daily slice",
		"date", slice.Date,
		"features", len(slice.Features),
		"discarded", discarded,
		"newest", isNewest,
	)
}

// FetchCountryData reloads location metadata, then returns the raw per-country
// document c/<code>.json.
func (p *Provider) FetchCountryData(ctx context.Context, code string) ([]byte, error) {
	if !isCountryCode(code) {
		return nil, fmt.Errorf("%w %q", ErrInvalidCountryCode, code)
	}
	if err := p.FetchLocationData(ctx); err != nil {
		return nil, err
	}
	return p.fetch(ctx, p.live, resCountry, p.opts.BaseURL+"c/"+code+".json")
}

func (p *Provider) fetch(ctx context.Context, src domain.Source, resource, url string) ([]byte, error) {
	start := p.clock.Now()
	body, err := src.Get(ctx, url)
	p.metrics.FetchDuration.WithLabelValues(resource).Observe(p.clock.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrNoData):
		p.metrics.FetchRequests.WithLabelValues(resource, "no_data").Inc()
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	case err != nil:
		p.metrics.FetchRequests.WithLabelValues(resource, "error").Inc()
		p.logger.Error("fetch failed", "resource", resource, "url", url, "error", err)
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	p.metrics.FetchRequests.WithLabelValues(resource, "success").Inc()
	return body, nil
}

func (p *Provider) noCache(url string) string {
	return url + "?nocache=" + strconv.FormatInt(p.clock.Now().UnixMilli(), 10)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func isCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
