package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastRSq     prometheus.Gauge
	lastRows    prometheus.Gauge
	latency     *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the recorder registered with the global Prometheus registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// New creates a recorder whose collectors are registered with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cpireg_runs_total",
				Help: "Total number of regression runs",
			},
			[]string{"index_source", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cpireg_errors_total",
				Help: "Total number of errors encountered, by kind",
			},
			[]string{"kind"},
		),
		lastRSq: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "cpireg_last_r_squared",
				Help: "Coefficient of determination of the most recent successful fit",
			},
		),
		lastRows: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "cpireg_last_aligned_rows",
				Help: "Aligned row count of the most recent successful fit",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cpireg_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts a finished run.
func (r *Recorder) RecordRun(indexSource, result string) {
	r.runsTotal.WithLabelValues(indexSource, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFit stores the latest fit quality.
func (r *Recorder) RecordFit(rows int, rSquared float64) {
	r.lastRows.Set(float64(rows))
	r.lastRSq.Set(rSquared)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
