package domain

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Country is an entry of the country reference table.
type Country struct {
	Code          string
	Name          string
	Continent     string
	Population    int
	BoundingBoxes []orb.Bound
}

// CountryLookup resolves country codes to reference entries.
type CountryLookup interface {
	Country(code string) (Country, bool)
}

// MainBoundingBox returns the first bounding box, or an empty bound at the
// origin if the country has none.
func (c Country) MainBoundingBox() orb.Bound {
	if len(c.BoundingBoxes) == 0 {
		return orb.Bound{}
	}
	return c.BoundingBoxes[0]
}

// Centroid is the center of the main bounding box, as [lng, lat].
func (c Country) Centroid() orb.Point {
	return c.MainBoundingBox().Center()
}

// ParseCountries parses the colon-delimited country table. Lines with fewer
// than four fields are skipped and counted. Unparseable populations become 0
// and unparseable bounding boxes are dropped.
func ParseCountries(text string) ([]Country, int) {
	var (
		countries []Country
		skipped   int
	)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 4 {
			skipped++
			continue
		}
		population, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			population = 0
		}
		c := Country{
			Continent:  parts[0],
			Code:       parts[1],
			Name:       parts[2],
			Population: population,
		}
		if len(parts) > 4 {
			c.BoundingBoxes = parseBoundingBoxes(parts[4])
		}
		countries = append(countries, c)
	}
	return countries, skipped
}

// parseBoundingBoxes parses "minLng,minLat,maxLng,maxLat|..." into bounds.
func parseBoundingBoxes(s string) []orb.Bound {
	var boxes []orb.Bound
	for _, raw := range strings.Split(s, "|") {
		fields := strings.Split(raw, ",")
		if len(fields) != 4 {
			continue
		}
		var v [4]float64
		ok := true
		for i, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				ok = false
				break
			}
			v[i] = n
		}
		if !ok {
			continue
		}
		boxes = append(boxes, orb.Bound{
			Min: orb.Point{v[0], v[1]},
			Max: orb.Point{v[2], v[3]},
		})
	}
	return boxes
}
