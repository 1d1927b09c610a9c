package rank

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

type fakeData struct {
	aggregate domain.AggregateData
	countries []domain.Country
	fetchErr  error
	fetched   []string
}

func (f *fakeData) FetchCountryNames(_ context.Context) error {
	f.fetched = append(f.fetched, "countries")
	return f.fetchErr
}

func (f *fakeData) FetchAggregateData(_ context.Context) error {
	f.fetched = append(f.fetched, "aggregate")
	return nil
}

func (f *fakeData) AggregateData() domain.AggregateData { return f.aggregate }

func (f *fakeData) AggregateDates() []string {
	var dates []string
	for _, d := range []string{"2020-03-01", "2020-03-02", "2020-03-03"} {
		if _, ok := f.aggregate[d]; ok {
			dates = append(dates, d)
		}
	}
	return dates
}

func (f *fakeData) Countries() []domain.Country { return f.countries }

func newFakeData() *fakeData {
	return &fakeData{
		countries: []domain.Country{
			{Code: "CN", Name: "China", Continent: "A"},
			{Code: "FR", Name: "France", Continent: "E"},
			{Code: "IT", Name: "Italy", Continent: "E"},
			{Code: "US", Name: "United States", Continent: "N"},
		},
		aggregate: domain.AggregateData{
			"2020-03-01": {
				{Code: "CN", CumConf: 1000, CumDeaths: 10},
				{Code: "IT", CumConf: 10, CumDeaths: 1},
				{Code: "FR", CumConf: 10},
			},
			"2020-03-02": {
				{Code: "CN", CumConf: 1000, CumDeaths: 20},
				{Code: "IT", CumConf: 100000, CumDeaths: 100},
				{Code: "FR", CumConf: 100},
			},
			"2020-03-03": {
				{Code: "CN", CumConf: 1000, CumDeaths: 30},
				{Code: "IT", CumConf: 100000, CumDeaths: 1000},
				{Code: "FR", CumConf: 100},
				{Code: "US", CumConf: 1},
			},
		},
	}
}

func render(t *testing.T, r *Rank) Frame {
	t.Helper()
	out, err := r.Render()
	require.NoError(t, err)
	f, ok := out.(Frame)
	require.True(t, ok)
	return f
}

func codes(f Frame) []string {
	out := make([]string, len(f.Bars))
	for i, b := range f.Bars {
		out[i] = b.Code
	}
	return out
}

func TestRank_FetchData(t *testing.T) {
	data := newFakeData()
	r := New(data)
	require.NoError(t, r.FetchData(context.Background()))
	assert.Equal(t, []string{"countries", "aggregate"}, data.fetched)

	data.fetchErr = errors.New("boom")
	assert.Error(t, r.FetchData(context.Background()))
}

func TestRank_FirstFrame(t *testing.T) {
	r := New(newFakeData())
	r.SetMaxWidth(512)
	f := render(t, r)

	assert.Equal(t, "2020-03-01", f.Date)
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, 3, f.Dates)
	assert.Equal(t, []string{"CN", "FR", "IT", "US"}, codes(f), "ties keep their previous order")

	cn := f.Bars[0]
	assert.Equal(t, "#bb9900", cn.Color)
	assert.Equal(t, "1,000", cn.Display)
	assert.True(t, cn.Visible)
	assert.Equal(t, 0, cn.Top)
	// 512 * log10(1000) / log10(100000)
	assert.Equal(t, 307, cn.Width)

	fr := f.Bars[1]
	assert.Equal(t, BarStep, fr.Top)
	assert.Equal(t, 102, fr.Width)

	us := f.Bars[3]
	assert.False(t, us.Visible, "zero counts are hidden")
	assert.Equal(t, 0, us.Width)
}

func TestRank_AdvanceReorders(t *testing.T) {
	r := New(newFakeData())
	render(t, r)

	f := r.Advance(true, 1)
	assert.Equal(t, "2020-03-02", f.Date)
	assert.Equal(t, []string{"IT", "CN", "FR", "US"}, codes(f))
	assert.Equal(t, 2*BarStep, f.Bars[2].Top)
	assert.Equal(t, 1000, f.Bars[0].Width)

	f = r.Advance(true, 1)
	assert.Equal(t, []string{"IT", "CN", "FR", "US"}, codes(f))
	assert.True(t, f.Bars[3].Visible)
	assert.Equal(t, 0, f.Bars[3].Width, "log10(1) is zero")
	assert.Equal(t, 3*BarStep, f.Bars[3].Top)
}

func TestRank_AdvanceClamps(t *testing.T) {
	r := New(newFakeData())

	f := r.Advance(false, 5)
	assert.Equal(t, 0, f.Index)

	f = r.Advance(true, 10)
	assert.Equal(t, 2, f.Index)
	assert.Equal(t, "2020-03-03", f.Date)

	r.Advance(false, 1)
	assert.Equal(t, 2, r.Advance(true, math.MaxInt).Index)
	assert.Equal(t, 0, r.Advance(false, math.MaxInt).Index)
	assert.Equal(t, 0, r.Advance(true, -3).Index, "negative steps do not move")
}

func TestRank_Wheel(t *testing.T) {
	r := New(newFakeData())
	assert.Equal(t, 1, r.Wheel(3).Index)
	assert.Equal(t, 2, r.Wheel(120).Index)
	assert.Equal(t, 1, r.Wheel(-1).Index)
	assert.Equal(t, 0, r.Wheel(0).Index, "zero delta moves backward")
}

func TestRank_TouchMove(t *testing.T) {
	r := New(newFakeData())
	assert.Equal(t, 0, r.TouchMove(149).Index)
	assert.Equal(t, 2, r.TouchMove(300).Index)
	assert.Equal(t, 1, r.TouchMove(-160).Index)
}

func TestRank_TouchMoveLargeDeltas(t *testing.T) {
	r := New(newFakeData())
	assert.Equal(t, 2, r.TouchMove(1e22).Index)
	assert.Equal(t, 0, r.TouchMove(-1e22).Index)
	assert.Equal(t, 0, r.TouchMove(math.Inf(1)).Index, "non-finite deltas are ignored")
	assert.Equal(t, 0, r.TouchMove(math.NaN()).Index)
	assert.Equal(t, 2, r.TouchMove(math.MaxFloat64).Index)
}

func TestRank_MetricDeaths(t *testing.T) {
	r := New(newFakeData())
	r.SetMetric(MetricDeaths)
	f := r.Advance(true, 2)

	assert.Equal(t, MetricDeaths, f.Metric)
	assert.Equal(t, []string{"IT", "CN", "FR", "US"}, codes(f))
	assert.Equal(t, 1000, f.Bars[0].Count)
	assert.Equal(t, 1000, f.Bars[0].Width)
	assert.False(t, f.Bars[2].Visible)
}

func TestRank_Empty(t *testing.T) {
	r := New(&fakeData{})
	f := render(t, r)
	assert.Empty(t, f.Date)
	assert.Empty(t, f.Bars)

	f = r.Advance(true, 1)
	assert.Equal(t, 0, f.Index)
}

func TestRank_UnloadRestarts(t *testing.T) {
	r := New(newFakeData())
	r.Advance(true, 2)
	r.OnUnload()
	f := render(t, r)
	assert.Equal(t, 0, f.Index)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("deaths")
	require.NoError(t, err)
	assert.Equal(t, MetricDeaths, m)

	_, err = ParseMetric("recovered")
	assert.Error(t, err)
}
