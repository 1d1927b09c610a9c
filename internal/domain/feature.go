package domain

import (
	"context"
	"errors"
	"time"
)

// PlaceholderGeoid is assigned to records that arrive without properties.
const PlaceholderGeoid = "0|0"

// ErrNoData reports that a remote file answered with a non-200 status.
// Callers treat it as "nothing to process" rather than a failure.
var ErrNoData = errors.New("no data")

// Source fetches the raw bytes of a remote data file.
type Source interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Feature is a located observation from a daily slice.
type Feature struct {
	Geoid string `json:"geoid"`
	Total int    `json:"total"`
	New   int    `json:"new"`
}

// DailySlice is one day's raw feature array.
type DailySlice struct {
	Date     string
	Features []Feature
}

// Totals is a rolled-up count for a province or a country on one day.
type Totals struct {
	Total int `json:"total"`
	New   int `json:"new"`
}

// Add accumulates a feature's counts.
func (t *Totals) Add(f Feature) {
	t.Total += f.Total
	t.New += f.New
}

// Location is the parsed value of a location_info entry.
type Location struct {
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country,omitempty"`
}

// AggregateRecord holds one country's cumulative counts on one date.
type AggregateRecord struct {
	Code      string `json:"code"`
	CumConf   int    `json:"cum_conf"`
	CumDeaths int    `json:"cum_deaths"`
}

// AggregateData maps ISO dates to per-country cumulative records.
type AggregateData map[string][]AggregateRecord

// LatestCounts is the global summary published by the scraper.
type LatestCounts struct {
	CaseCount int    `json:"caseCount"`
	Deaths    int    `json:"deaths"`
	Date      string `json:"date"`
}

// DaySnapshot is a per-country roll-up of one daily slice, as published downstream.
type DaySnapshot struct {
	Date        string    `json:"date"`
	Code        string    `json:"code"`
	Total       int       `json:"total"`
	New         int       `json:"new"`
	ProcessedAt time.Time `json:"processed_at"`
}
