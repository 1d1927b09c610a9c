package domain

import (
	"encoding/json"
	"sort"

	"github.com/paulmach/orb/geojson"
)

// GraphData is a geoid-indexed view of date-indexed features, for charting.
// Every series holds exactly one entry per date; nil marks a missing value.
type GraphData struct {
	Dates  []string
	Geoids []string
	Series map[string][]*float64
}

// ConvertFeaturesToGraphData pivots features keyed by date into one series per
// geoid for the named property. For each (geoid, date) the first feature of
// that date with the geoid and the property wins.
func ConvertFeaturesToGraphData(byDate map[string][]*geojson.Feature, prop string) GraphData {
	out := GraphData{
		Dates:  make([]string, 0, len(byDate)),
		Geoids: []string{},
		Series: make(map[string][]*float64),
	}
	for date := range byDate {
		out.Dates = append(out.Dates, date)
	}
	sort.Strings(out.Dates)

	seen := make(map[string]bool)
	for _, date := range out.Dates {
		for _, f := range byDate[date] {
			geoid := featureGeoid(f)
			if geoid == "" || seen[geoid] {
				continue
			}
			seen[geoid] = true
			out.Geoids = append(out.Geoids, geoid)
		}
	}

	for _, geoid := range out.Geoids {
		series := make([]*float64, len(out.Dates))
		for i, date := range out.Dates {
			for _, f := range byDate[date] {
				if featureGeoid(f) != geoid {
					continue
				}
				raw, ok := f.Properties[prop]
				if !ok {
					continue
				}
				if v, ok := numeric(raw); ok {
					series[i] = &v
				}
				break
			}
		}
		out.Series[geoid] = series
	}
	return out
}

// MarshalJSON emits the flat chart form: dates, geoids, then one key per geoid.
func (g GraphData) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(g.Series)+2)
	for geoid, series := range g.Series {
		flat[geoid] = series
	}
	flat["dates"] = g.Dates
	flat["geoids"] = g.Geoids
	return json.Marshal(flat)
}

func featureGeoid(f *geojson.Feature) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	s, _ := f.Properties["geoid"].(string)
	return s
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
