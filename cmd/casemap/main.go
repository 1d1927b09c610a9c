package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/case-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/case-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/case-map-service/internal/adapter/remote"
	"github.com/couchcryptid/case-map-service/internal/config"
	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/nav"
	"github.com/couchcryptid/case-map-service/internal/observability"
	"github.com/couchcryptid/case-map-service/internal/pipeline"
	"github.com/couchcryptid/case-map-service/internal/provider"
	"github.com/couchcryptid/case-map-service/internal/view"
	"github.com/couchcryptid/case-map-service/internal/view/mapview"
	"github.com/couchcryptid/case-map-service/internal/view/rank"
	"github.com/couchcryptid/case-map-service/internal/view/syncview"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// The fragment can force 3D on top of MAP_MODE.
	fragment := nav.ParseFragment(cfg.MapFragment)
	mode, err := domain.ParseRenderMode(cfg.MapMode)
	if err != nil {
		logger.Error("invalid map mode", "error", err)
		os.Exit(1)
	}
	if fragment.Enabled(nav.Key3D) {
		mode = domain.Mode3D
	}

	client := remote.NewClient(cfg.FetchTimeout, logger)
	slices, err := remote.NewCachedSource(client, cfg.SliceCacheSize, metrics)
	if err != nil {
		logger.Error("failed to create slice cache", "error", err)
		os.Exit(1)
	}
	data := provider.New(client, slices, provider.Options{
		BaseURL:      cfg.DataBaseURL,
		CountriesURL: cfg.CountriesURL,
		Mode:         mode,
		Concurrency:  cfg.FetchConcurrency,
	}, clock, metrics, logger)

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var (
		loader pipeline.SnapshotLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	p := pipeline.New(data, loader, clock, cfg.RefreshInterval, logger, metrics)

	mapView := mapview.New(mapview.NewScene(), data, fragment, logger)
	animator := mapview.NewAnimator(mapView, clock, fragment.Enabled(nav.KeyAutodrive), logger)
	rankView := rank.New(data)
	syncView := syncview.New(data)

	p.Subscribe(func(_ string, latest bool) {
		if latest && !animator.Running() {
			mapView.ShowDataAtLatestDate()
		}
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:    p,
		Data:     data,
		Views:    view.NewRegistry(mapView, rankView, syncView),
		Map:      mapView,
		Animator: animator,
		Rank:     rankView,
		Sync:     syncView,
		Client: httpadapter.ClientConfig{
			Mode:        mode.String(),
			Fragment:    fragment.Fragment(),
			MapboxToken: cfg.MapboxToken,
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start load and refresh pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	if fragment.Enabled(nav.KeyAutodrive) {
		animator.Start(ctx)
		logger.Info("autodrive animation started")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	animator.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
