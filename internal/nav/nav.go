// Package nav parses the URL fragment used as a configuration channel, e.g.
// "#autodrive/light/FR".
package nav

import (
	"strings"
	"sync"
)

// Config keys.
const (
	KeyAutodrive = "autodrive"
	KeyLight     = "light"
	Key3D        = "3d"
	KeyFocus     = "focus"
)

// Nav holds navigation settings. It is safe for concurrent use.
type Nav struct {
	mu     sync.RWMutex
	config map[string]string
}

// New returns an empty Nav.
func New() *Nav {
	return &Nav{config: make(map[string]string)}
}

// ParseFragment reads the fragment of url (everything after '#').
// Segments are separated by '/'. "autodrive", "light" and "3d" match
// case-insensitively; an upper-case 2-letter segment selects the country to
// focus. Other segments are ignored.
func ParseFragment(url string) *Nav {
	n := New()
	_, fragment, _ := strings.Cut(url, "#")
	for _, seg := range strings.Split(fragment, "/") {
		switch {
		case seg == "":
		case strings.EqualFold(seg, KeyAutodrive):
			n.config[KeyAutodrive] = "true"
		case strings.EqualFold(seg, KeyLight):
			n.config[KeyLight] = "true"
		case strings.EqualFold(seg, Key3D):
			n.config[Key3D] = "true"
		case len(seg) == 2 && strings.ToUpper(seg) == seg:
			n.config[KeyFocus] = seg
		}
	}
	return n
}

// Config returns the value of key, or "".
func (n *Nav) Config(key string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.config[key]
}

// Enabled reports whether a flag key is set.
func (n *Nav) Enabled(key string) bool {
	return n.Config(key) == "true"
}

// SetConfig sets key to value. An empty value clears the key.
func (n *Nav) SetConfig(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if value == "" {
		delete(n.config, key)
		return
	}
	n.config[key] = value
}

// Fragment renders the settings back into a URL fragment.
func (n *Nav) Fragment() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var segs []string
	for _, key := range []string{KeyAutodrive, KeyLight, Key3D} {
		if n.config[key] == "true" {
			segs = append(segs, key)
		}
	}
	if focus := n.config[KeyFocus]; focus != "" {
		segs = append(segs, focus)
	}
	if len(segs) == 0 {
		return ""
	}
	return "#" + strings.Join(segs, "/")
}
