package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultDataBaseURL  = "https://raw.githubusercontent.com/ghdsi/covid-19/master/"
	defaultCountriesURL = "https://raw.githubusercontent.com/ghdsi/common/master/countries.data"
)

// Config holds all service settings, populated from environment variables
// and, when CONFIG_FILE is set, a YAML file underneath them.
type Config struct {
	DataBaseURL  string
	CountriesURL string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	FetchTimeout     time.Duration
	FetchConcurrency int
	SliceCacheSize   int
	RefreshInterval  time.Duration

	// Map rendering.
	MapMode     string
	MapFragment string
	MapboxToken string

	// Day snapshot publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	shutdownTimeout, err := src.shutdownTimeout()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := src.duration("FETCH_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := src.duration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	concurrency, err := src.intInRange("FETCH_CONCURRENCY", 8, 1, 64)
	if err != nil {
		return nil, err
	}
	cacheSize, err := src.intInRange("SLICE_CACHE_SIZE", 512, 1, 1<<20)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := src.boolean("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataBaseURL:        src.orDefault("DATA_BASE_URL", defaultDataBaseURL),
		CountriesURL:       src.orDefault("COUNTRIES_URL", defaultCountriesURL),
		HTTPAddr:           src.orDefault("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(src.orDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(src.orDefault("LOG_FORMAT", "json")),
		ShutdownTimeout:    shutdownTimeout,
		FetchTimeout:       fetchTimeout,
		FetchConcurrency:   concurrency,
		SliceCacheSize:     cacheSize,
		RefreshInterval:    refreshInterval,
		MapMode:            strings.ToLower(src.orDefault("MAP_MODE", "2d")),
		MapFragment:        src.orDefault("MAP_FRAGMENT", ""),
		MapboxToken:        src.orDefault("MAPBOX_TOKEN", ""),
		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(src.orDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: src.orDefault("KAFKA_SNAPSHOT_TOPIC", "case-map-day-snapshots"),
	}

	if err := validateURL("DATA_BASE_URL", cfg.DataBaseURL); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(cfg.DataBaseURL, "/") {
		cfg.DataBaseURL += "/"
	}
	if err := validateURL("COUNTRIES_URL", cfg.CountriesURL); err != nil {
		return nil, err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid LOG_LEVEL")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("invalid LOG_FORMAT")
	}
	switch cfg.MapMode {
	case "2d", "3d":
	default:
		return nil, errors.New("invalid MAP_MODE: must be 2d or 3d")
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSnapshotTopic == "" {
			return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q is not an absolute URL", key, raw)
	}
	return nil
}
