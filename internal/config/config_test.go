package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultDataBaseURL, cfg.DataBaseURL)
	assert.Equal(t, defaultCountriesURL, cfg.CountriesURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, 512, cfg.SliceCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "2d", cfg.MapMode)
	assert.Empty(t, cfg.MapFragment)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "case-map-day-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_BASE_URL", "http://localhost:8000/data")
	t.Setenv("COUNTRIES_URL", "http://localhost:8000/countries.data")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_CONCURRENCY", "4")
	t.Setenv("SLICE_CACHE_SIZE", "64")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("MAP_MODE", "3D")
	t.Setenv("MAP_FRAGMENT", "#autodrive/US")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/data/", cfg.DataBaseURL, "trailing slash is added")
	assert.Equal(t, "http://localhost:8000/countries.data", cfg.CountriesURL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.Equal(t, 64, cfg.SliceCacheSize)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "3d", cfg.MapMode)
	assert.Equal(t, "#autodrive/US", cfg.MapFragment)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"FETCH_TIMEOUT", "0s"},
		{"REFRESH_INTERVAL", "soon"},
		{"FETCH_CONCURRENCY", "0"},
		{"FETCH_CONCURRENCY", "65"},
		{"SLICE_CACHE_SIZE", "many"},
		{"KAFKA_ENABLED", "maybe"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"MAP_MODE", "4d"},
		{"DATA_BASE_URL", "not a url"},
		{"COUNTRIES_URL", "/relative/path"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casemap.yaml")
	content := `
data_base_url: http://mirror.internal/covid/
fetch_concurrency: 16
refresh_interval: 2m
shutdown_timeout: 45s
kafka_brokers:
  - a:9092
  - b:9092
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("FETCH_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://mirror.internal/covid/", cfg.DataBaseURL)
	assert.Equal(t, 3, cfg.FetchConcurrency, "environment overrides the file")
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 45*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoad_ConfigFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG_FILE")
}

func TestLoad_ConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG_FILE")
}
