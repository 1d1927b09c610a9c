// Package rank implements the animated bar ranking of countries by
// cumulative count, one date at a time.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/view"
)

const (
	// BarStep is the vertical distance between ranked bars, in pixels.
	BarStep = 37
	// TouchStep is the drag distance, in pixels, for one date step.
	TouchStep = 150

	defaultMaxWidth = 1000
)

// ContinentColors maps continent codes to bar colors.
var ContinentColors = map[string]string{
	"O": "#b600ff",
	"S": "#0c1fb4",
	"N": "#0060ff",
	"E": "#00b31a",
	"A": "#bb9900",
	"P": "#e37300",
	"Z": "#e90000",
}

// Metric selects which cumulative count is ranked.
type Metric string

const (
	MetricCases  Metric = "cases"
	MetricDeaths Metric = "deaths"
)

// ParseMetric accepts "cases" or "deaths".
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricCases, MetricDeaths:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// DataSource is what the rank view reads from the data provider.
type DataSource interface {
	FetchCountryNames(ctx context.Context) error
	FetchAggregateData(ctx context.Context) error
	AggregateData() domain.AggregateData
	AggregateDates() []string
	Countries() []domain.Country
}

// Bar is one country's bar at the current date.
type Bar struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Continent string `json:"continent"`
	Color     string `json:"color"`
	Count     int    `json:"count"`
	Display   string `json:"display"`
	Visible   bool   `json:"visible"`
	Top       int    `json:"top"`
	Width     int    `json:"width"`
}

// Frame is the ranking at one date.
type Frame struct {
	Date   string `json:"date"`
	Index  int    `json:"index"`
	Dates  int    `json:"dates"`
	Metric Metric `json:"metric"`
	Bars   []Bar  `json:"bars"`
}

// Rank implements view.View. Bar order persists between frames so that
// equal counts keep their previous relative position.
type Rank struct {
	data DataSource

	mu       sync.Mutex
	metric   Metric
	maxWidth int
	dates    []string
	index    int
	max      int
	bars     []Bar
	built    bool
}

var _ view.View = (*Rank)(nil)

// New creates a rank view showing cumulative cases.
func New(data DataSource) *Rank {
	return &Rank{data: data, metric: MetricCases, maxWidth: defaultMaxWidth}
}

func (r *Rank) ID() string    { return "rank" }
func (r *Rank) Title() string { return "Rank" }

// FetchData loads the country table and the aggregate data.
func (r *Rank) FetchData(ctx context.Context) error {
	if err := r.data.FetchCountryNames(ctx); err != nil {
		return err
	}
	return r.data.FetchAggregateData(ctx)
}

func (r *Rank) OnThemeChanged(_ bool) {}

// OnUnload drops the built bars; the next render starts from the first date.
func (r *Rank) OnUnload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = false
}

// SetMaxWidth sets the width, in pixels, of the longest bar.
func (r *Rank) SetMaxWidth(px int) {
	if px <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxWidth = px
}

// SetMetric switches the ranked count.
func (r *Rank) SetMetric(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == r.metric {
		return
	}
	r.metric = m
	if r.built {
		r.rescale()
	}
}

// Render returns the frame at the current date, building the bars on
// first use.
func (r *Rank) Render() (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.built {
		r.build()
	}
	return r.frame(), nil
}

// Advance moves steps dates forward or backward, clamping at both ends.
func (r *Rank) Advance(forward bool, steps int) Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.built {
		r.build()
	}
	steps = max(0, min(steps, len(r.dates)))
	if forward {
		r.index += steps
	} else {
		r.index -= steps
	}
	r.index = max(0, min(r.index, len(r.dates)-1))
	return r.frame()
}

// Wheel advances one date; positive deltaY moves forward.
func (r *Rank) Wheel(deltaY float64) Frame {
	return r.Advance(deltaY > 0, 1)
}

// TouchMove advances one date per TouchStep pixels dragged. A non-finite
// delta leaves the cursor where it is.
func (r *Rank) TouchMove(delta float64) Frame {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return r.Advance(true, 0)
	}
	steps := min(math.Floor(math.Abs(delta)/TouchStep), math.MaxInt32)
	return r.Advance(delta > 0, int(steps))
}

func (r *Rank) build() {
	r.dates = r.data.AggregateDates()
	r.index = 0
	r.bars = r.bars[:0]
	for _, c := range r.data.Countries() {
		r.bars = append(r.bars, Bar{
			Code:      c.Code,
			Name:      c.Name,
			Continent: c.Continent,
			Color:     ContinentColors[c.Continent],
		})
	}
	r.rescale()
	r.built = true
}

// rescale recomputes the scale maximum over every date for the metric.
func (r *Rank) rescale() {
	r.max = 0
	for _, records := range r.data.AggregateData() {
		for _, rec := range records {
			r.max = max(r.max, r.count(rec))
		}
	}
}

func (r *Rank) count(rec domain.AggregateRecord) int {
	if r.metric == MetricDeaths {
		return rec.CumDeaths
	}
	return rec.CumConf
}

func (r *Rank) frame() Frame {
	f := Frame{Index: r.index, Dates: len(r.dates), Metric: r.metric, Bars: []Bar{}}
	if len(r.dates) == 0 {
		return f
	}
	f.Date = r.dates[r.index]

	counts := make(map[string]int)
	for _, rec := range r.data.AggregateData()[f.Date] {
		counts[rec.Code] = r.count(rec)
	}
	for i := range r.bars {
		r.bars[i].Count = counts[r.bars[i].Code]
	}
	sort.SliceStable(r.bars, func(i, j int) bool {
		return r.bars[i].Count > r.bars[j].Count
	})

	maxLog := math.Log10(float64(r.max))
	y := 0
	for i := range r.bars {
		b := &r.bars[i]
		b.Visible = b.Count > 0
		b.Display = view.FormatCount(b.Count)
		b.Top = y
		b.Width = 0
		if b.Visible && maxLog > 0 {
			b.Width = int(math.Floor(float64(r.maxWidth) * math.Log10(float64(b.Count)) / maxLog))
		}
		if b.Visible {
			y += BarStep
		}
	}
	f.Bars = append(f.Bars, r.bars...)
	return f
}
