package syncview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

type fakeData struct {
	aggregate domain.AggregateData
	countries map[string]domain.Country
}

func (f *fakeData) FetchCountryNames(_ context.Context) error  { return nil }
func (f *fakeData) FetchAggregateData(_ context.Context) error { return nil }
func (f *fakeData) AggregateData() domain.AggregateData        { return f.aggregate }
func (f *fakeData) Country(code string) (domain.Country, bool) {
	c, ok := f.countries[code]
	return c, ok
}

func newFakeData() *fakeData {
	return &fakeData{
		countries: map[string]domain.Country{
			"IT": {Code: "IT", Name: "Italy", Population: 60000000},
			"CN": {Code: "CN", Name: "China", Population: 1400000000},
			"KR": {Code: "KR", Name: "South Korea", Population: 50000000},
			"XX": {Code: "XX", Name: "No census"},
		},
		aggregate: domain.AggregateData{
			"2020-03-02": {
				{Code: "CN", CumConf: 80000},
				{Code: "IT", CumConf: 9000},
				{Code: "XX", CumConf: 50000},
				{Code: "ZZ", CumConf: 50000},
			},
			"2020-03-01": {
				{Code: "CN", CumConf: 79000},
				{Code: "IT", CumConf: 1500},
				{Code: "KR", CumConf: 4000},
			},
			"2020-03-03": {
				{Code: "CN", CumConf: 80100},
				{Code: "IT", CumConf: 12000},
				{Code: "KR", CumConf: 9999},
			},
		},
	}
}

func TestSyncView_Chart(t *testing.T) {
	s := New(newFakeData())
	chart := s.Chart()

	assert.Equal(t, []string{"D + 0", "D + 1", "D + 2"}, chart.Labels)
	require.Len(t, chart.Datasets, 2)

	cn := chart.Datasets[0]
	assert.Equal(t, "CN", cn.Code)
	assert.Equal(t, "China", cn.Label)
	assert.Equal(t, CurveColors[0], cn.BorderColor)
	assert.Equal(t, []float64{0.06, 0.06, 0.06}, cn.Data)

	it := chart.Datasets[1]
	assert.Equal(t, "IT", it.Code)
	assert.Equal(t, CurveColors[1], it.BorderColor)
	assert.Equal(t, []float64{0.2}, it.Data, "curve starts on the day the threshold is crossed")
}

func TestSyncView_Empty(t *testing.T) {
	s := New(&fakeData{})
	chart := s.Chart()
	assert.Empty(t, chart.Labels)
	assert.Empty(t, chart.Datasets)
}

func TestSyncView_View(t *testing.T) {
	s := New(newFakeData())
	assert.Equal(t, "sync", s.ID())
	assert.Equal(t, "Synchronized", s.Title())
	require.NoError(t, s.FetchData(context.Background()))

	out, err := s.Render()
	require.NoError(t, err)
	assert.IsType(t, Chart{}, out)
}

func TestPerMille(t *testing.T) {
	assert.InDelta(t, 1.0, perMille(1000, 1000000), 1e-9)
	assert.InDelta(t, 0.33, perMille(1, 3000), 1e-9)
	assert.InDelta(t, 0.67, perMille(2, 3000), 1e-9)
}
