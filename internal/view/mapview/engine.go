package mapview

import (
	"maps"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Engine events.
const (
	EventLoad      = "load"
	EventStyleData = "styledata"
)

// Layer is a rendering layer bound to a source.
type Layer struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Paint  map[string]any `json:"paint"`
}

// Camera is the viewport state.
type Camera struct {
	Center orb.Point  `json:"center"`
	Zoom   float64    `json:"zoom"`
	Pitch  float64    `json:"pitch"`
	Bounds *orb.Bound `json:"bounds,omitempty"`
}

// Engine is the map rendering surface. Event handlers run synchronously on
// the goroutine that triggered the event.
type Engine interface {
	On(event string, handler func())
	SetStyle(url string)
	AddSource(id string, data *geojson.FeatureCollection)
	HasSource(id string) bool
	SetSourceData(id string, data *geojson.FeatureCollection) bool
	AddLayer(layer Layer)
	HasLayer(id string) bool
	SetCamera(cam Camera)
	FitBounds(b orb.Bound)
	Remove()
}

// SceneSnapshot is a point-in-time copy of a Scene.
type SceneSnapshot struct {
	Style   string                                `json:"style"`
	Loaded  bool                                  `json:"loaded"`
	Sources map[string]*geojson.FeatureCollection `json:"sources"`
	Layers  []Layer                               `json:"layers"`
	Camera  Camera                                `json:"camera"`
}

// Scene is an in-memory Engine. Changing the style drops every source and
// layer, like a browser map does, and the first style change fires "load".
type Scene struct {
	mu       sync.Mutex
	style    string
	loaded   bool
	sources  map[string]*geojson.FeatureCollection
	layers   []Layer
	camera   Camera
	handlers map[string][]func()
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		sources:  make(map[string]*geojson.FeatureCollection),
		handlers: make(map[string][]func()),
	}
}

func (s *Scene) On(event string, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

func (s *Scene) SetStyle(url string) {
	s.mu.Lock()
	s.style = url
	s.sources = make(map[string]*geojson.FeatureCollection)
	s.layers = nil
	first := !s.loaded
	s.loaded = true
	s.mu.Unlock()

	s.emit(EventStyleData)
	if first {
		s.emit(EventLoad)
	}
}

func (s *Scene) emit(event string) {
	s.mu.Lock()
	handlers := append([]func(){}, s.handlers[event]...)
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

func (s *Scene) AddSource(id string, data *geojson.FeatureCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[id] = data
}

func (s *Scene) HasSource(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sources[id]
	return ok
}

func (s *Scene) SetSourceData(id string, data *geojson.FeatureCollection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return false
	}
	s.sources[id] = data
	return true
}

func (s *Scene) AddLayer(layer Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l.ID == layer.ID {
			s.layers[i] = layer
			return
		}
	}
	s.layers = append(s.layers, layer)
}

func (s *Scene) HasLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.layers {
		if l.ID == id {
			return true
		}
	}
	return false
}

func (s *Scene) SetCamera(cam Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

// FitBounds centers the camera on b and records it as the fitted area.
func (s *Scene) FitBounds(b orb.Bound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Center = b.Center()
	s.camera.Bounds = &b
}

// Remove tears the scene down. Handlers are dropped and the next style
// change fires "load" again.
func (s *Scene) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = ""
	s.loaded = false
	s.sources = make(map[string]*geojson.FeatureCollection)
	s.layers = nil
	s.camera = Camera{}
	s.handlers = make(map[string][]func())
}

// Snapshot copies the scene state.
func (s *Scene) Snapshot() SceneSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SceneSnapshot{
		Style:   s.style,
		Loaded:  s.loaded,
		Sources: maps.Clone(s.sources),
		Layers:  append([]Layer(nil), s.layers...),
		Camera:  s.camera,
	}
}
