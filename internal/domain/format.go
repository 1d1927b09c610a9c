package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RenderMode selects the geometry produced for a feature.
type RenderMode int

const (
	Mode2D RenderMode = iota
	Mode3D
)

// featureHalfWidth is half of the 3D column footprint, in degrees.
const featureHalfWidth = 0.2

// ParseRenderMode accepts "2d" or "3d" (case-insensitive).
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "2d":
		return Mode2D, nil
	case "3d":
		return Mode3D, nil
	default:
		return Mode2D, fmt.Errorf("unknown render mode %q", s)
	}
}

func (m RenderMode) String() string {
	if m == Mode3D {
		return "3d"
	}
	return "2d"
}

// FormatFeature turns a raw feature into a renderable GeoJSON feature.
// Coordinates are always [longitude, latitude].
func FormatFeature(f Feature, mode RenderMode) *geojson.Feature {
	geoid := f.Geoid
	if geoid == "" {
		geoid = PlaceholderGeoid
	}
	lat, lng := ParseGeoid(geoid)

	var out *geojson.Feature
	if mode == Mode3D {
		h := featureHalfWidth
		out = geojson.NewFeature(orb.Polygon{orb.Ring{
			{lng + h, lat + h},
			{lng - h, lat + h},
			{lng - h, lat - h},
			{lng + h, lat - h},
			{lng + h, lat + h},
		}})
		out.Properties["height"] = ColumnHeight(f.Total)
	} else {
		out = geojson.NewFeature(orb.Point{lng, lat})
	}
	out.Properties["geoid"] = geoid
	out.Properties["total"] = f.Total
	out.Properties["new"] = f.New
	return out
}

// ColumnHeight is the extrusion height used for a 3D feature.
func ColumnHeight(total int) float64 {
	return 10 * math.Sqrt(100000*float64(total))
}

// FormatFeatureSet formats every feature in order.
func FormatFeatureSet(features []Feature, mode RenderMode) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(FormatFeature(f, mode))
	}
	return fc
}
