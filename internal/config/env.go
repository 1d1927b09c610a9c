package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// source resolves a setting from the environment first, then the optional
// config file, then the default.
type source struct {
	file map[string]string
}

// loadFile reads a flat YAML mapping whose keys are the lower-cased variable
// names, e.g. "data_base_url: https://...".
func loadFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE %s: %w", path, err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	out := make(map[string]string, len(decoded))
	for k, v := range decoded {
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			parts := make([]string, len(list))
			for i, item := range list {
				parts[i] = fmt.Sprint(item)
			}
			out[strings.ToLower(k)] = strings.Join(parts, ",")
			continue
		}
		out[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func (s source) orDefault(key, fallback string) string {
	if v, ok := s.file[strings.ToLower(key)]; ok && v != "" {
		fallback = v
	}
	return sharedcfg.EnvOrDefault(key, fallback)
}

// shutdownTimeout defers to the shared SHUTDOWN_TIMEOUT parser unless only
// the config file sets it.
func (s source) shutdownTimeout() (time.Duration, error) {
	if _, ok := s.file["shutdown_timeout"]; ok && os.Getenv("SHUTDOWN_TIMEOUT") == "" {
		return s.duration("SHUTDOWN_TIMEOUT", "10s")
	}
	return sharedcfg.ParseShutdownTimeout()
}

func (s source) duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(s.orDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func (s source) intInRange(key string, fallback, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s.orDefault(key, strconv.Itoa(fallback)))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

func (s source) boolean(key string, fallback bool) (bool, error) {
	b, err := strconv.ParseBool(s.orDefault(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
