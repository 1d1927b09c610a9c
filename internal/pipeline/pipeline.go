// Package pipeline drives the provider: the startup load sequence, periodic
// refreshes, and publication of per-country day snapshots.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/observability"
)

// DataSource is the subset of the provider the pipeline drives.
type DataSource interface {
	FetchInitialData(ctx context.Context) error
	FetchAggregateData(ctx context.Context) error
	FetchLatestCounts(ctx context.Context) error
	FetchDataIndex(ctx context.Context) error
	FetchLatestDailySlice(ctx context.Context) (string, error)
	FetchDailySlices(ctx context.Context, fn func(name, date string)) error
	CountryFeaturesForDay(date string) map[string]domain.Totals
}

// SnapshotLoader writes day snapshots to the destination.
type SnapshotLoader interface {
	LoadBatch(ctx context.Context, snapshots []domain.DaySnapshot) error
}

// SliceListener is notified with the date of every processed slice. The
// newest slice is reported with latest set.
type SliceListener func(date string, latest bool)

// Pipeline orchestrates loading and refreshing data.
type Pipeline struct {
	source   DataSource
	loader   SnapshotLoader
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	mu        sync.Mutex
	listeners []SliceListener
}

// New creates a Pipeline. loader may be nil to disable snapshot publishing.
func New(source DataSource, loader SnapshotLoader, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   source,
		loader:   loader,
		clock:    clock,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Subscribe registers fn to be called after each processed slice.
func (p *Pipeline) Subscribe(fn SliceListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// CheckReadiness returns nil once the startup load has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("initial data load has not completed")
	}
	return nil
}

// Run performs the startup load, then refreshes every interval until the
// context is cancelled. A failed startup load is attempted again on the next tick.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.interval)

	p.load(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if !p.ready.Load() {
				p.load(ctx)
				continue
			}
			p.refresh(ctx)
		}
	}
}

// load runs the startup sequence: initial data, aggregate data, the newest
// slice, then every other slice.
func (p *Pipeline) load(ctx context.Context) {
	start := p.clock.Now()

	if err := p.source.FetchInitialData(ctx); err != nil {
		if ctx.Err() == nil {
			p.logger.Error("initial data load failed", "error", err)
		}
		return
	}

	// Rank and sync views degrade to empty without aggregate data.
	if err := p.source.FetchAggregateData(ctx); err != nil {
		p.logger.Warn("aggregate data unavailable", "error", err)
	}

	if date, err := p.source.FetchLatestDailySlice(ctx); err != nil {
		p.logger.Warn("latest daily slice failed", "error", err)
	} else if date != "" {
		p.sliceDone(ctx, date, true)
	}

	err := p.source.FetchDailySlices(ctx, func(_, date string) {
		if date != "" {
			p.sliceDone(ctx, date, false)
		}
	})
	if err != nil {
		p.logger.Warn("daily slices interrupted", "error", err)
		return
	}

	p.ready.Store(true)
	p.logger.Info("initial load complete", "duration", p.clock.Since(start))
}

// refresh re-fetches the summary counts and the slice index independently,
// then the newest slice once the index is current.
func (p *Pipeline) refresh(ctx context.Context) {
	var (
		g        errgroup.Group
		indexErr error
	)
	g.Go(func() error {
		err := p.source.FetchLatestCounts(ctx)
		if err != nil {
			p.logger.Error("refresh latest counts failed", "error", err)
		}
		return err
	})
	g.Go(func() error {
		indexErr = p.source.FetchDataIndex(ctx)
		if indexErr != nil {
			p.logger.Error("refresh data index failed", "error", indexErr)
		}
		return indexErr
	})
	failed := g.Wait() != nil

	if indexErr == nil {
		date, err := p.source.FetchLatestDailySlice(ctx)
		switch {
		case err != nil:
			failed = true
			p.logger.Error("refresh latest slice failed", "error", err)
		case date != "":
			p.sliceDone(ctx, date, true)
		}
	}

	if failed {
		p.metrics.RefreshRuns.WithLabelValues("error").Inc()
		return
	}
	p.metrics.RefreshRuns.WithLabelValues("success").Inc()
}

func (p *Pipeline) sliceDone(ctx context.Context, date string, latest bool) {
	p.publish(ctx, date)

	p.mu.Lock()
	listeners := append([]SliceListener(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(date, latest)
	}
}

func (p *Pipeline) publish(ctx context.Context, date string) {
	if p.loader == nil {
		return
	}
	snapshots := domain.BuildSnapshots(date, p.source.CountryFeaturesForDay(date))
	if len(snapshots) == 0 {
		return
	}
	if err := p.loader.LoadBatch(ctx, snapshots); err != nil {
		p.metrics.SnapshotsPublished.WithLabelValues("error").Add(float64(len(snapshots)))
		p.logger.Error("publish snapshots failed", "date", date, "error", err)
		return
	}
	p.metrics.SnapshotsPublished.WithLabelValues("success").Add(float64(len(snapshots)))
}
