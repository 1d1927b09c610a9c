package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseGeoid splits a "lat|lng" key. Missing or malformed parts parse as 0.
func ParseGeoid(geoid string) (lat, lng float64) {
	parts := strings.Split(geoid, "|")
	lat = parseFloatOrZero(parts[0])
	if len(parts) > 1 {
		lng = parseFloatOrZero(parts[1])
	}
	return lat, lng
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseLocation splits a location_info value "city|province|country".
func ParseLocation(value string) Location {
	parts := strings.Split(value, "|")
	var loc Location
	if len(parts) > 0 {
		loc.City = parts[0]
	}
	if len(parts) > 1 {
		loc.Province = parts[1]
	}
	if len(parts) > 2 {
		loc.CountryCode = parts[2]
	}
	return loc
}

// ParseLocationInfo parses location_info.data into a geoid -> location map.
// Lines without a ':' separator are skipped.
func ParseLocationInfo(text string) map[string]Location {
	out := make(map[string]Location)
	for _, line := range strings.Split(text, "\n") {
		geoid, value, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if !ok || geoid == "" {
			continue
		}
		out[geoid] = ParseLocation(value)
	}
	return out
}

// ParseSliceIndex parses d/index.txt. Order is preserved; blank lines are skipped.
func ParseSliceIndex(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}

// count accepts both JSON numbers and numeric strings; anything else is 0.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = count(n)
	return nil
}

// ParseLatestCounts decodes latestCounts.json and returns its first entry.
func ParseLatestCounts(data []byte) (LatestCounts, error) {
	var rows []struct {
		CaseCount count  `json:"caseCount"`
		Deaths    count  `json:"deaths"`
		Date      string `json:"date"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return LatestCounts{}, fmt.Errorf("parse latest counts: %w", err)
	}
	if len(rows) == 0 {
		return LatestCounts{}, errors.New("parse latest counts: empty array")
	}
	return LatestCounts{
		CaseCount: int(rows[0].CaseCount),
		Deaths:    int(rows[0].Deaths),
		Date:      rows[0].Date,
	}, nil
}

// ParseAggregate decodes aggregate.json, dropping dates that have no records.
func ParseAggregate(data []byte) (AggregateData, error) {
	var raw map[string][]struct {
		Code      string `json:"code"`
		CumConf   count  `json:"cum_conf"`
		CumDeaths count  `json:"cum_deaths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse aggregate data: %w", err)
	}
	out := make(AggregateData, len(raw))
	for date, rows := range raw {
		if len(rows) == 0 {
			continue
		}
		records := make([]AggregateRecord, len(rows))
		for i, r := range rows {
			records[i] = AggregateRecord{Code: r.Code, CumConf: int(r.CumConf), CumDeaths: int(r.CumDeaths)}
		}
		out[date] = records
	}
	return out, nil
}

// ParseSlice decodes a daily slice file. Features without properties get the
// placeholder geoid; a missing "new" count defaults to 0.
func ParseSlice(data []byte) (DailySlice, error) {
	var raw struct {
		Date     string `json:"date"`
		Features []struct {
			Properties *struct {
				Geoid string `json:"geoid"`
				Total count  `json:"total"`
				New   *count `json:"new"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return DailySlice{}, fmt.Errorf("parse daily slice: %w", err)
	}

	slice := DailySlice{Date: raw.Date, Features: make([]Feature, 0, len(raw.Features))}
	for _, rf := range raw.Features {
		if rf.Properties == nil {
			slice.Features = append(slice.Features, Feature{Geoid: PlaceholderGeoid})
			continue
		}
		f := Feature{Geoid: rf.Properties.Geoid, Total: int(rf.Properties.Total)}
		if f.Geoid == "" {
			f.Geoid = PlaceholderGeoid
		}
		if rf.Properties.New != nil {
			f.New = int(*rf.Properties.New)
		}
		slice.Features = append(slice.Features, f)
	}
	return slice, nil
}
