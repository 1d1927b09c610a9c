package mapview

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
)

func TestScene_SetStyleWipesState(t *testing.T) {
	s := NewScene()
	var events []string
	s.On(EventStyleData, func() { events = append(events, EventStyleData) })
	s.On(EventLoad, func() { events = append(events, EventLoad) })

	s.SetStyle(LightStyle)
	assert.Equal(t, []string{EventStyleData, EventLoad}, events)

	s.AddSource("counts", geojson.NewFeatureCollection())
	s.AddLayer(Layer{ID: "totals"})
	assert.True(t, s.HasSource("counts"))
	assert.True(t, s.HasLayer("totals"))

	s.SetStyle(DarkStyle)
	assert.Equal(t, []string{EventStyleData, EventLoad, EventStyleData}, events, "load fires once")
	assert.False(t, s.HasSource("counts"))
	assert.False(t, s.HasLayer("totals"))
	assert.Equal(t, DarkStyle, s.Snapshot().Style)
}

func TestScene_SetSourceData(t *testing.T) {
	s := NewScene()
	fc := geojson.NewFeatureCollection()
	assert.False(t, s.SetSourceData("counts", fc))

	s.AddSource("counts", geojson.NewFeatureCollection())
	fc.Append(geojson.NewFeature(orb.Point{1, 2}))
	assert.True(t, s.SetSourceData("counts", fc))
	assert.Len(t, s.Snapshot().Sources["counts"].Features, 1)
}

func TestScene_AddLayerReplaces(t *testing.T) {
	s := NewScene()
	s.AddLayer(Layer{ID: "totals", Type: "circle"})
	s.AddLayer(Layer{ID: "totals", Type: "fill-extrusion"})
	layers := s.Snapshot().Layers
	assert.Len(t, layers, 1)
	assert.Equal(t, "fill-extrusion", layers[0].Type)
}

func TestScene_Remove(t *testing.T) {
	s := NewScene()
	loads := 0
	s.On(EventLoad, func() { loads++ })
	s.SetStyle(LightStyle)
	s.FitBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}})

	s.Remove()
	snap := s.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Nil(t, snap.Camera.Bounds)

	s.SetStyle(LightStyle)
	assert.Equal(t, 1, loads, "handlers are dropped on remove")
}
