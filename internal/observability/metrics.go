package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "case_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Remote fetches.
	FetchRequests *prometheus.CounterVec   // labels: resource, outcome={success,error,no_data}
	FetchDuration *prometheus.HistogramVec // labels: resource
	SliceCache    *prometheus.CounterVec   // labels: result={hit,miss}

	// Slice processing.
	SlicesProcessed   prometheus.Counter
	FeaturesDiscarded prometheus.Counter
	KnownDates        prometheus.Gauge

	RefreshRuns        *prometheus.CounterVec // labels: outcome={success,error}
	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}
	ServiceReady       prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Remote data file fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Remote data file fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		SliceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slice_cache_total",
			Help:      "Daily slice cache lookups by result.",
		}, []string{"result"}),
		SlicesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slices_processed_total",
			Help:      "Daily slices aggregated into province and country totals.",
		}),
		FeaturesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_discarded_total",
			Help:      "Features skipped during aggregation for lack of location metadata.",
		}),
		KnownDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_dates",
			Help:      "Number of dates with loaded data.",
		}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Periodic refreshes of latest counts and the slice index.",
		}, []string{"outcome"}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Per-country day snapshots written to Kafka.",
		}, []string{"outcome"}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 once initial data has loaded, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.SliceCache,
		m.SlicesProcessed,
		m.FeaturesDiscarded,
		m.KnownDates,
		m.RefreshRuns,
		m.SnapshotsPublished,
		m.ServiceReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
