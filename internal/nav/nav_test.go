package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFragment(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		autodrive bool
		light     bool
		threeD    bool
		focus     string
	}{
		{"no fragment", "https://example.org/", false, false, false, ""},
		{"empty fragment", "https://example.org/#", false, false, false, ""},
		{"autodrive", "https://example.org/#autodrive", true, false, false, ""},
		{"mixed case flags", "#AutoDrive/LIGHT/3D", true, true, true, ""},
		{"country focus", "https://example.org/#light/FR", false, true, false, "FR"},
		{"lower-case code ignored", "#fr", false, false, false, ""},
		{"three letters ignored", "#USA", false, false, false, ""},
		{"last code wins", "#US/FR", false, false, false, "FR"},
		{"unknown segments ignored", "#foo//bar/autodrive", true, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ParseFragment(tt.url)
			assert.Equal(t, tt.autodrive, n.Enabled(KeyAutodrive))
			assert.Equal(t, tt.light, n.Enabled(KeyLight))
			assert.Equal(t, tt.threeD, n.Enabled(Key3D))
			assert.Equal(t, tt.focus, n.Config(KeyFocus))
		})
	}
}

func TestNav_SetConfig(t *testing.T) {
	n := New()
	n.SetConfig(KeyFocus, "DE")
	assert.Equal(t, "DE", n.Config(KeyFocus))

	n.SetConfig(KeyFocus, "")
	assert.Empty(t, n.Config(KeyFocus))
}

func TestNav_Fragment(t *testing.T) {
	assert.Equal(t, "", New().Fragment())

	n := ParseFragment("#US/light/autodrive")
	assert.Equal(t, "#autodrive/light/US", n.Fragment())
}
