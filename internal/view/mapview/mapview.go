// Package mapview renders case counts on a map. It owns the map's load and
// style lifecycle, the per-date data swap, popups and the legend.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/nav"
	"github.com/couchcryptid/case-map-service/internal/view"
)

var (
	ErrUnknownCountry = errors.New("unknown country")
	ErrUnknownFeature = errors.New("no feature at location")
)

// DataSource is what the map reads from the data provider.
type DataSource interface {
	Mode() domain.RenderMode
	Dates() []string
	LatestDate() string
	AtomicFeaturesForDay(date string) []*geojson.Feature
	AtomicFeaturesByDay() map[string][]*geojson.Feature
	Country(code string) (domain.Country, bool)
	Location(geoid string) (domain.Location, bool)
}

// State is the map lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

var initialCamera = Camera{Center: orb.Point{10, 0}, Zoom: 1}

// MapView implements view.View for the case map.
type MapView struct {
	engine Engine
	data   DataSource
	nav    *nav.Nav
	logger *slog.Logger

	mu          sync.Mutex
	state       State
	style       string
	dark        bool
	needsRender bool
	currentDate string
}

var _ view.View = (*MapView)(nil)

// New creates an unloaded map view.
func New(engine Engine, data DataSource, n *nav.Nav, logger *slog.Logger) *MapView {
	return &MapView{
		engine:      engine,
		data:        data,
		nav:         n,
		logger:      logger,
		dark:        !n.Enabled(nav.KeyLight),
		needsRender: true,
	}
}

func (m *MapView) ID() string    { return "map" }
func (m *MapView) Title() string { return "Map" }

// FetchData is a no-op; map data arrives through the refresh pipeline.
func (m *MapView) FetchData(_ context.Context) error { return nil }

// State returns the lifecycle state.
func (m *MapView) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NeedsRender reports whether the layers still have to be rebuilt.
func (m *MapView) NeedsRender() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsRender
}

// Init attaches the lifecycle handlers and sets the initial style.
func (m *MapView) Init(dark bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked(dark)
}

// Handlers fire while m.mu is held by whichever method changed the style.
func (m *MapView) initLocked(dark bool) {
	m.engine.On(EventLoad, m.onLoad)
	m.engine.On(EventStyleData, m.onStyleData)
	m.state = StateLoading
	m.dark = dark
	m.engine.SetCamera(initialCamera)
	m.style = styleURL(dark)
	m.engine.SetStyle(m.style)
}

func styleURL(dark bool) string {
	if dark {
		return DarkStyle
	}
	return LightStyle
}

func (m *MapView) onLoad() {
	m.populate()
	if m.data.Mode() == domain.Mode3D {
		cam := initialCamera
		cam.Pitch = pitch3D
		m.engine.SetCamera(cam)
	}
	if focus := m.nav.Config(nav.KeyFocus); focus != "" {
		if err := m.flyToLocked(focus); err != nil {
			m.logger.Warn("focus country unavailable", "code", focus, "error", err)
		}
	}
	m.needsRender = false
	m.state = StateLoaded
}

// onStyleData rebuilds the source and layer a style change wiped.
func (m *MapView) onStyleData() {
	m.populate()
	m.state = StateLoaded
}

func (m *MapView) populate() {
	if !m.engine.HasSource(sourceID) {
		m.engine.AddSource(sourceID, geojson.NewFeatureCollection())
	}
	if !m.engine.HasLayer(layerID) {
		m.engine.AddLayer(totalsLayer(m.data.Mode()))
	}
	date := m.currentDate
	if date == "" {
		date = m.data.LatestDate()
	}
	if date != "" {
		m.showLocked(date)
	}
}

// SetStyle switches between the dark and light style. Nothing happens when
// the style is unchanged and the layers are current.
func (m *MapView) SetStyle(dark bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dark = dark
	if m.state == StateUnloaded {
		return
	}
	next := styleURL(dark)
	if next == m.style && !m.needsRender {
		return
	}
	m.style = next
	m.state = StateLoading
	m.engine.SetStyle(next)
}

// ShowDataAtDate swaps the map data to date. It reports whether the data
// source existed.
func (m *MapView) ShowDataAtDate(date string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentDate = date
	return m.showLocked(date)
}

func (m *MapView) showLocked(date string) bool {
	fc := geojson.NewFeatureCollection()
	fc.Features = append(fc.Features, m.data.AtomicFeaturesForDay(date)...)
	return m.engine.SetSourceData(sourceID, fc)
}

// ShowDataAtLatestDate shows the newest date, if any.
func (m *MapView) ShowDataAtLatestDate() bool {
	date := m.data.LatestDate()
	if date == "" {
		return false
	}
	return m.ShowDataAtDate(date)
}

// CurrentDate returns the date on display.
func (m *MapView) CurrentDate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentDate == "" {
		return m.data.LatestDate()
	}
	return m.currentDate
}

// FlyToCountry fits the camera to the country's main bounding box and
// records it as the focus.
func (m *MapView) FlyToCountry(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flyToLocked(code)
}

func (m *MapView) flyToLocked(code string) error {
	c, ok := m.data.Country(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCountry, code)
	}
	m.engine.FitBounds(c.MainBoundingBox())
	m.nav.SetConfig(nav.KeyFocus, code)
	return nil
}

// Popup describes the information shown for a clicked location.
type Popup struct {
	Geoid        string            `json:"geoid"`
	Label        string            `json:"label"`
	Total        int               `json:"total"`
	TotalDisplay string            `json:"totalDisplay"`
	CountryCode  string            `json:"countryCode,omitempty"`
	Position     orb.Point         `json:"position"`
	History      *domain.GraphData `json:"history,omitempty"`
}

// Popup builds the popup for geoid on the current date. clickLng is the
// longitude clicked; the popup is placed on the copy of the world nearest to it.
// withHistory adds the location's total over every loaded date.
func (m *MapView) Popup(geoid string, clickLng float64, withHistory bool) (Popup, error) {
	m.mu.Lock()
	date := m.currentDate
	m.mu.Unlock()
	if date == "" {
		date = m.data.LatestDate()
	}

	feature := findFeature(m.data.AtomicFeaturesForDay(date), geoid)
	if feature == nil {
		return Popup{}, fmt.Errorf("%w: %s", ErrUnknownFeature, geoid)
	}
	total, _ := feature.Properties["total"].(int)

	lat, lng := domain.ParseGeoid(geoid)
	for clickLng-lng > 180 {
		lng += 360
	}
	for lng-clickLng > 180 {
		lng -= 360
	}

	p := Popup{
		Geoid:        geoid,
		Total:        total,
		TotalDisplay: view.FormatCount(total),
		Position:     orb.Point{lng, lat},
	}
	if loc, ok := m.data.Location(geoid); ok {
		p.Label = domain.DescribeLocation(loc, m.data)
		if c, ok := m.data.Country(loc.CountryCode); ok {
			p.CountryCode = c.Code
		}
	}
	if withHistory {
		// Dates without the location stay in the axis as gaps.
		byDate := make(map[string][]*geojson.Feature)
		for _, d := range m.data.Dates() {
			byDate[d] = nil
		}
		for d, features := range m.data.AtomicFeaturesByDay() {
			if f := findFeature(features, geoid); f != nil {
				byDate[d] = append(byDate[d], f)
			}
		}
		graph := domain.ConvertFeaturesToGraphData(byDate, "total")
		p.History = &graph
	}
	return p, nil
}

func findFeature(features []*geojson.Feature, geoid string) *geojson.Feature {
	for _, f := range features {
		if g, _ := f.Properties["geoid"].(string); g == geoid {
			return f
		}
	}
	return nil
}

// Legend returns the color scale entries.
func (m *MapView) Legend() []ColorStep {
	return append([]ColorStep(nil), ColorMap...)
}

// Frame is the rendered state of the map view.
type Frame struct {
	State    string        `json:"state"`
	Date     string        `json:"date"`
	Mode     string        `json:"mode"`
	Fragment string        `json:"fragment"`
	Scene    SceneSnapshot `json:"scene"`
	Legend   []ColorStep   `json:"legend"`
}

// Render loads the map on first use and returns its current frame.
func (m *MapView) Render() (any, error) {
	m.mu.Lock()
	if m.state == StateUnloaded {
		m.initLocked(m.dark)
	}
	state := m.state
	m.mu.Unlock()

	frame := Frame{
		State:    state.String(),
		Date:     m.CurrentDate(),
		Mode:     m.data.Mode().String(),
		Fragment: m.nav.Fragment(),
		Legend:   m.Legend(),
	}
	if s, ok := m.engine.(interface{ Snapshot() SceneSnapshot }); ok {
		frame.Scene = s.Snapshot()
	}
	return frame, nil
}

// OnThemeChanged switches the style.
func (m *MapView) OnThemeChanged(dark bool) {
	m.SetStyle(dark)
}

// OnUnload tears the map down; the next Render rebuilds it.
func (m *MapView) OnUnload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Remove()
	m.state = StateUnloaded
	m.needsRender = true
}
