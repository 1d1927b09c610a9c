// Package view defines the contract shared by the map, rank and sync views
// and the helpers they have in common.
package view

import (
	"context"
	"fmt"
	"sync"
)

// View is one page of the application. Render returns a JSON-serializable
// frame describing what the client should draw.
type View interface {
	ID() string
	Title() string
	FetchData(ctx context.Context) error
	Render() (any, error)
	OnThemeChanged(dark bool)
	OnUnload()
}

// Registry keeps views in registration order and tracks the active one.
type Registry struct {
	mu     sync.Mutex
	views  map[string]View
	order  []string
	active string
}

// NewRegistry creates a registry holding views, the first one active.
func NewRegistry(views ...View) *Registry {
	r := &Registry{views: make(map[string]View, len(views))}
	for _, v := range views {
		r.views[v.ID()] = v
		r.order = append(r.order, v.ID())
	}
	if len(r.order) > 0 {
		r.active = r.order[0]
	}
	return r
}

// Get returns the view with id.
func (r *Registry) Get(id string) (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	return v, ok
}

// Summary describes a registered view.
type Summary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// List returns the registered views in order.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Summary{ID: id, Title: r.views[id].Title(), Active: id == r.active})
	}
	return out
}

// Activate switches to the view with id, unloading the previous one.
func (r *Registry) Activate(id string) (View, error) {
	r.mu.Lock()
	next, ok := r.views[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("unknown view %q", id)
	}
	prev := r.views[r.active]
	r.active = id
	r.mu.Unlock()

	if prev != nil && prev != next {
		prev.OnUnload()
	}
	return next, nil
}

// SetTheme forwards a theme change to every view.
func (r *Registry) SetTheme(dark bool) {
	r.mu.Lock()
	views := make([]View, 0, len(r.order))
	for _, id := range r.order {
		views = append(views, r.views[id])
	}
	r.mu.Unlock()

	for _, v := range views {
		v.OnThemeChanged(dark)
	}
}
