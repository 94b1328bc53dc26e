package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the view engine.
type Metrics struct {
	Recomputes       prometheus.Counter
	VisibleRecords   prometheus.Gauge
	EvaluateDuration prometheus.Histogram
	SelectionEvents  *prometheus.CounterVec // labels: view={map,timeline,legend,filters}
	IgnoredEvents    *prometheus.CounterVec // labels: reason={empty_brush,year_out_of_range,no_marks,unknown_key}

	// Ingestion metrics.
	IngestWarnings prometheus.Counter
	RecordsLoaded  *prometheus.GaugeVec // labels: year

	// Animation metrics.
	AnimationFrames  prometheus.Counter
	AnimationPlaying prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Recomputes,
		m.VisibleRecords,
		m.EvaluateDuration,
		m.SelectionEvents,
		m.IgnoredEvents,
		m.IngestWarnings,
		m.RecordsLoaded,
		m.AnimationFrames,
		m.AnimationPlaying,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeview",
			Name:      "recomputes_total",
			Help:      "Total filtered-set recomputations pushed to the views.",
		}),
		VisibleRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakeview",
			Name:      "visible_records",
			Help:      "Number of records in the last frame sent to the views.",
		}),
		EvaluateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakeview",
			Name:      "evaluate_duration_seconds",
			Help:      "Duration of one predicate evaluation over a year of records.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		SelectionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakeview",
			Name:      "selection_events_total",
			Help:      "Selection events applied, by originating control.",
		}, []string{"view"}),
		IgnoredEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakeview",
			Name:      "ignored_events_total",
			Help:      "Events dropped as no-ops, by reason.",
		}, []string{"reason"}),
		IngestWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeview",
			Name:      "ingest_warnings_total",
			Help:      "Fields coerced to a sentinel during ingestion.",
		}),
		RecordsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quakeview",
			Name:      "records_loaded",
			Help:      "Records held for each year.",
		}, []string{"year"}),
		AnimationFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeview",
			Name:      "animation_frames_total",
			Help:      "Animation prefixes emitted to the views.",
		}),
		AnimationPlaying: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakeview",
			Name:      "animation_playing",
			Help:      "1 while an animation is playing, 0 otherwise.",
		}),
	}
}
