// Package metrics exposes Prometheus collectors for finder runs. All
// methods are nil-safe so instrumentation stays optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the finder's Prometheus collectors.
type Metrics struct {
	JobsTotal        *prometheus.CounterVec
	BatchesTotal     *prometheus.CounterVec
	OffloadFallbacks prometheus.Counter
	RunDuration      prometheus.Histogram
	ActiveRuns       prometheus.Gauge
}

// New creates and registers the finder collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_jobs_total",
				Help: "Finder jobs by terminal status",
			},
			[]string{"status"},
		),
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_batches_total",
				Help: "Executed batches by execution mode",
			},
			[]string{"mode"},
		),
		OffloadFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "finder_offload_fallbacks_total",
				Help: "Jobs re-run locally after a remote miss or failure",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finder_run_duration_seconds",
				Help:    "Wall-clock duration of finder runs",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
			},
		),
		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "finder_active_runs",
				Help: "Finder runs currently in flight (0 or 1)",
			},
		),
	}
	reg.MustRegister(m.JobsTotal, m.BatchesTotal, m.OffloadFallbacks, m.RunDuration, m.ActiveRuns)
	return m
}

// JobDone records a job's terminal status: completed, failed or filtered.
func (m *Metrics) JobDone(status string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(status).Inc()
}

// BatchDone records an executed batch by mode: remote or local.
func (m *Metrics) BatchDone(mode string) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(mode).Inc()
}

// Fallback records one job re-run locally.
func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.OffloadFallbacks.Inc()
}

// RunStarted marks a run in flight.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished records a completed run and its duration.
func (m *Metrics) RunFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.RunDuration.Observe(d.Seconds())
}
