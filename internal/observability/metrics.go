package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis engine.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec   // labels: role, outcome={success,error}
	AnalysisDuration  prometheus.Histogram
	ModuleDuration    *prometheus.HistogramVec // labels: module={risk,spread,wind,plan}
	EngineReady       prometheus.Gauge
	SnapshotFallbacks *prometheus.CounterVec   // labels: fallback={cache,zero_value}
	CriticalChanges   *prometheus.CounterVec   // labels: trigger
	PublishOutcomes   *prometheus.CounterVec   // labels: outcome={success,error}
	ZoneCacheLookups  *prometheus.CounterVec   // labels: result={hit,miss}
	ProviderDuration  *prometheus.HistogramVec // labels: provider={weather,facilities}
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ignismap",
			Name:      "analyses_total",
			Help:      "Completed analysis requests by requesting role and outcome.",
		}, []string{"role", "outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ignismap",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis, snapshot fetch included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ModuleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ignismap",
			Name:      "module_duration_seconds",
			Help:      "Duration of each analysis module.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"module"}),
		EngineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ignismap",
			Name:      "engine_ready",
			Help:      "1 when the engine has completed at least one analysis.",
		}),
		SnapshotFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ignismap",
			Name:      "snapshot_fallbacks_total",
			Help:      "Analyses that ran on degraded environmental data, by fallback tier.",
		}, []string{"fallback"}),
		CriticalChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ignismap",
			Name:      "critical_wind_changes_total",
			Help:      "Critical wind changes detected, by trigger.",
		}, []string{"trigger"}),
		PublishOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ignismap",
			Name:      "bundle_publish_total",
			Help:      "Analysis bundles published to the sink, by outcome.",
		}, []string{"outcome"}),
		ZoneCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ignismap",
			Name:      "zone_cache_total",
			Help:      "Zone context cache lookups by result.",
		}, []string{"result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ignismap",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.ModuleDuration,
		m.EngineReady,
		m.SnapshotFallbacks,
		m.CriticalChanges,
		m.PublishOutcomes,
		m.ZoneCacheLookups,
		m.ProviderDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AnalysesTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ignismap", Name: "analyses_total"}, []string{"role", "outcome"}),
		AnalysisDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ignismap", Name: "analysis_duration_seconds"}),
		ModuleDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ignismap", Name: "module_duration_seconds"}, []string{"module"}),
		EngineReady:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ignismap", Name: "engine_ready"}),
		SnapshotFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ignismap", Name: "snapshot_fallbacks_total"}, []string{"fallback"}),
		CriticalChanges:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ignismap", Name: "critical_wind_changes_total"}, []string{"trigger"}),
		PublishOutcomes:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ignismap", Name: "bundle_publish_total"}, []string{"outcome"}),
		ZoneCacheLookups:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ignismap", Name: "zone_cache_total"}, []string{"result"}),
		ProviderDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ignismap", Name: "provider_request_duration_seconds"}, []string{"provider"}),
	}
}
