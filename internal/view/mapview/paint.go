package mapview

import (
	"math"

	"github.com/couchcryptid/case-map-service/internal/domain"
)

// Style URLs.
const (
	LightStyle = "mapbox://styles/healthmap/ckc1y3lbr1upr1jq6pwfcb96k"
	DarkStyle  = "mapbox://styles/healthmap/ck7o47dgs1tmb1ilh5b1ro1vn"
)

const (
	sourceID = "counts"
	layerID  = "totals"

	pitch3D = 55
)

// ColorStep is one entry of the color scale. Limit is the exclusive upper
// bound of the bucket; 0 means unbounded.
type ColorStep struct {
	Color string `json:"color"`
	Label string `json:"label"`
	Limit int    `json:"-"`
}

// ColorMap is the scale used by both the paint expression and the legend.
// The last entry marks new cases and is not part of the step expression.
var ColorMap = []ColorStep{
	{Color: "#67009e", Label: "< 10", Limit: 10},
	{Color: "#921694", Label: "11-100", Limit: 100},
	{Color: "#d34d60", Label: "101-500", Limit: 500},
	{Color: "#fb9533", Label: "501-2000", Limit: 2000},
	{Color: "#edf91c", Label: "> 2000"},
	{Color: "cornflowerblue", Label: "New"},
}

func scale() []ColorStep {
	return ColorMap[:len(ColorMap)-1]
}

// ColorFor returns the scale color of a case count.
func ColorFor(total int) string {
	steps := scale()
	for _, s := range steps {
		if s.Limit > 0 && total < s.Limit {
			return s.Color
		}
	}
	return steps[len(steps)-1].Color
}

// CircleRadius is the 2D circle radius for a case count.
func CircleRadius(total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Log10(math.Sqrt(total)) * 5
}

// colorExpression is the style "step" expression over the scale.
func colorExpression() []any {
	steps := scale()
	expr := []any{"step", []any{"get", "total"}, steps[0].Color}
	for i := 1; i < len(steps); i++ {
		expr = append(expr, steps[i-1].Limit, steps[i].Color)
	}
	return expr
}

func totalsLayer(mode domain.RenderMode) Layer {
	if mode == domain.Mode3D {
		return Layer{
			ID:     layerID,
			Type:   "fill-extrusion",
			Source: sourceID,
			Paint: map[string]any{
				"fill-extrusion-height":  []any{"get", "height"},
				"fill-extrusion-color":   colorExpression(),
				"fill-extrusion-opacity": 0.8,
			},
		}
	}
	total := []any{"get", "total"}
	return Layer{
		ID:     layerID,
		Type:   "circle",
		Source: sourceID,
		Paint: map[string]any{
			"circle-radius": []any{
				"case",
				[]any{"<", 0, []any{"number", total}},
				[]any{"*", []any{"log10", []any{"sqrt", total}}, 5},
				0,
			},
			"circle-color":   colorExpression(),
			"circle-opacity": 0.6,
		},
	}
}
