package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion and query paths.
type Metrics struct {
	RowsParsed       prometheus.Counter
	BatchesCommitted prometheus.Counter
	ParseWarnings    prometheus.Counter
	IngestRunning    prometheus.Gauge

	BatchSize      prometheus.Histogram
	IngestDuration prometheus.Histogram

	QueryDuration prometheus.Histogram
	QueryCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsParsed,
		m.BatchesCommitted,
		m.ParseWarnings,
		m.IngestRunning,
		m.BatchSize,
		m.IngestDuration,
		m.QueryDuration,
		m.QueryCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipsdb",
			Name:      "rows_parsed_total",
			Help:      "Total observation rows parsed from the raw diagnostics file.",
		}),
		BatchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipsdb",
			Name:      "batches_committed_total",
			Help:      "Total row batches committed to the database.",
		}),
		ParseWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shipsdb",
			Name:      "parse_warnings_total",
			Help:      "Non-fatal anomalies noticed while parsing, such as year mismatches.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipsdb",
			Name:      "ingest_running",
			Help:      "1 while an ingestion run is active, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipsdb",
			Name:      "batch_size",
			Help:      "Number of rows per committed batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipsdb",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingestion run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipsdb",
			Name:      "query_duration_seconds",
			Help:      "Duration of storm observation queries.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipsdb",
			Name:      "query_cache_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
	}
}
