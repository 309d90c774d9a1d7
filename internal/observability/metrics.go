package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// archive ingestion run.
type Metrics struct {
	StationsProcessed prometheus.Counter
	StationsFailed    prometheus.Counter
	RowsNormalized    prometheus.Counter
	RowsDeduplicated  prometheus.Counter
	OrphanRows        prometheus.Counter
	RunActive         prometheus.Gauge

	SynthesizedIntervals prometheus.Counter
	MergedIntervals      prometheus.Counter

	// Sink metrics.
	AggregatesWritten *prometheus.CounterVec // label: resolution
	SinkErrors        prometheus.Counter

	StationDuration prometheus.Histogram
	RowsPerStation  prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsProcessed,
		m.StationsFailed,
		m.RowsNormalized,
		m.RowsDeduplicated,
		m.OrphanRows,
		m.RunActive,
		m.SynthesizedIntervals,
		m.MergedIntervals,
		m.AggregatesWritten,
		m.SinkErrors,
		m.StationDuration,
		m.RowsPerStation,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "stations_processed_total",
			Help:      "Stations fully normalized and persisted.",
		}),
		StationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "stations_failed_total",
			Help:      "Stations aborted by a fatal archive defect.",
		}),
		RowsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "rows_normalized_total",
			Help:      "Raw product rows converted to canonical records.",
		}),
		RowsDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "rows_deduplicated_total",
			Help:      "Rows dropped as exact duplicates across archive files.",
		}),
		OrphanRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "orphan_rows_total",
			Help:      "Rows with no covering metadata interval.",
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dwd_etl",
			Name:      "run_active",
			Help:      "1 while an ingestion run is in progress.",
		}),
		SynthesizedIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "synthesized_intervals_total",
			Help:      "Placeholder metadata intervals created for orphan gaps.",
		}),
		MergedIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "merged_intervals_total",
			Help:      "Metadata intervals produced by timeline merging.",
		}),
		AggregatesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "aggregates_written_total",
			Help:      "Aggregate records persisted, by resolution.",
		}, []string{"resolution"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_etl",
			Name:      "sink_errors_total",
			Help:      "Failed persistence attempts.",
		}),
		StationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_etl",
			Name:      "station_duration_seconds",
			Help:      "Wall time to process one station end to end.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RowsPerStation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_etl",
			Name:      "rows_per_station",
			Help:      "Raw rows read per station archive.",
			Buckets:   []float64{1000, 10000, 50000, 100000, 250000, 500000, 1000000, 2000000},
		}),
	}
}
