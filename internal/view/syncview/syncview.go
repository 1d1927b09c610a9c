// Package syncview aligns each country's case curve on the day it crossed a
// common threshold, scaled per 1000 inhabitants.
package syncview

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/view"
)

// StartingCaseCount is the cumulative count at which a curve starts.
const StartingCaseCount = 10000

// CurveColors is the cycling palette for curves.
var CurveColors = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// DataSource is what the sync view reads from the data provider.
type DataSource interface {
	FetchCountryNames(ctx context.Context) error
	FetchAggregateData(ctx context.Context) error
	AggregateData() domain.AggregateData
	Country(code string) (domain.Country, bool)
}

// Dataset is one country's curve.
type Dataset struct {
	Code        string    `json:"code"`
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
}

// Chart is the rendered sync view.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// SyncView implements view.View.
type SyncView struct {
	data DataSource
}

var _ view.View = (*SyncView)(nil)

func New(data DataSource) *SyncView {
	return &SyncView{data: data}
}

func (s *SyncView) ID() string    { return "sync" }
func (s *SyncView) Title() string { return "Synchronized" }

func (s *SyncView) FetchData(ctx context.Context) error {
	if err := s.data.FetchCountryNames(ctx); err != nil {
		return err
	}
	return s.data.FetchAggregateData(ctx)
}

func (s *SyncView) OnThemeChanged(_ bool) {}
func (s *SyncView) OnUnload()             {}

func (s *SyncView) Render() (any, error) {
	return s.Chart(), nil
}

type curve struct {
	code  string
	start string
	cases []int
}

// Chart builds the synchronized curves. Countries that never reach
// StartingCaseCount, and countries without a known population, are left out.
// Curves are ordered by start date, then code.
func (s *SyncView) Chart() Chart {
	aggregate := s.data.AggregateData()
	dates := make([]string, 0, len(aggregate))
	for date := range aggregate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	curves := make(map[string]*curve)
	for _, date := range dates {
		for _, rec := range aggregate[date] {
			c, ok := curves[rec.Code]
			if !ok {
				if rec.CumConf < StartingCaseCount {
					continue
				}
				c = &curve{code: rec.Code, start: date}
				curves[rec.Code] = c
			}
			c.cases = append(c.cases, rec.CumConf)
		}
	}

	ordered := make([]*curve, 0, len(curves))
	for _, c := range curves {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		return ordered[i].code < ordered[j].code
	})

	chart := Chart{Labels: []string{}, Datasets: []Dataset{}}
	maxDays := 0
	for _, c := range ordered {
		country, ok := s.data.Country(c.code)
		if !ok || country.Population <= 0 {
			continue
		}
		ds := Dataset{
			Code:        c.code,
			Label:       country.Name,
			Data:        make([]float64, len(c.cases)),
			BorderColor: CurveColors[len(chart.Datasets)%len(CurveColors)],
		}
		for i, n := range c.cases {
			ds.Data[i] = perMille(n, country.Population)
		}
		chart.Datasets = append(chart.Datasets, ds)
		maxDays = max(maxDays, len(c.cases))
	}
	for i := range maxDays {
		chart.Labels = append(chart.Labels, fmt.Sprintf("D + %d", i))
	}
	return chart
}

// perMille is cases per 1000 inhabitants, rounded to two decimals.
func perMille(cases, population int) float64 {
	return math.Round(float64(cases)/float64(population)*1000*100) / 100
}
