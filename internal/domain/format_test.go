package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFeature_2D(t *testing.T) {
	f := FormatFeature(Feature{Geoid: "40.5|-74.25", Total: 10, New: 3}, Mode2D)

	pt, ok := f.Geometry.(orb.Point)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-74.25, 40.5}, pt, "coordinates are [lng, lat]")
	assert.Equal(t, "40.5|-74.25", f.Properties["geoid"])
	assert.Equal(t, 10, f.Properties["total"])
	assert.Equal(t, 3, f.Properties["new"])
	assert.NotContains(t, f.Properties, "height")
}

func TestFormatFeature_3D(t *testing.T) {
	f := FormatFeature(Feature{Geoid: "10|20", Total: 4}, Mode3D)

	poly, ok := f.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)

	want := orb.Ring{
		{20.2, 10.2},
		{19.8, 10.2},
		{19.8, 9.8},
		{20.2, 9.8},
		{20.2, 10.2},
	}
	require.Len(t, poly[0], len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], poly[0][i][0], 1e-9)
		assert.InDelta(t, want[i][1], poly[0][i][1], 1e-9)
	}
	assert.InDelta(t, 10*math.Sqrt(400000), f.Properties["height"], 1e-9)
	assert.Equal(t, 0, f.Properties["new"])
}

func TestFormatFeature_Placeholder(t *testing.T) {
	f := FormatFeature(Feature{}, Mode2D)
	assert.Equal(t, PlaceholderGeoid, f.Properties["geoid"])
	assert.Equal(t, orb.Point{0, 0}, f.Geometry)
}

func TestFormatFeatureSet(t *testing.T) {
	fc := FormatFeatureSet([]Feature{{Geoid: "1|2"}, {Geoid: "3|4"}}, Mode2D)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, orb.Point{4, 3}, fc.Features[1].Geometry)
}

func TestParseRenderMode(t *testing.T) {
	m, err := ParseRenderMode("3D")
	require.NoError(t, err)
	assert.Equal(t, Mode3D, m)

	m, err = ParseRenderMode("")
	require.NoError(t, err)
	assert.Equal(t, Mode2D, m)

	_, err = ParseRenderMode("4d")
	assert.Error(t, err)
}
