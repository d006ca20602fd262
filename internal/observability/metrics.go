package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "body_trend"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	RecordsIngested   prometheus.Counter
	RowsMalformed     prometheus.Counter
	InvalidTimestamps prometheus.Counter
	InvalidNumbers    prometheus.Counter

	SamplesSelected prometheus.Counter
	RecordsSkipped  prometheus.Counter

	StageDuration  *prometheus.HistogramVec // labels: stage={ingest,sample,publish}
	LastRunSuccess prometheus.Gauge

	// Kafka sink.
	SamplesPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered nowhere, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Total records parsed from the CSV export.",
		}),
		RowsMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_malformed_total",
			Help:      "Data lines whose field count differed from the header.",
		}),
		InvalidTimestamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_timestamps_total",
			Help:      "Time values that could not be parsed and were kept verbatim.",
		}),
		InvalidNumbers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_numbers_total",
			Help:      "Numeric column values coerced to NaN.",
		}),
		SamplesSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_selected_total",
			Help:      "Daily morning samples written.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records ignored by the sampler for lack of a canonical time.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last pipeline run that completed without error.",
		}),
		SamplesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_published_total",
			Help:      "Daily samples written to the Kafka topic.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsIngested,
		m.RowsMalformed,
		m.InvalidTimestamps,
		m.InvalidNumbers,
		m.SamplesSelected,
		m.RecordsSkipped,
		m.StageDuration,
		m.LastRunSuccess,
		m.SamplesPublished,
	}
}
