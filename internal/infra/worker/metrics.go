package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"senate-bills/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for scheduled crawls.
// It embeds ConfigMetrics for configuration monitoring.
//
// Embedded metrics (from ConfigMetrics):
//   - senate_bills_config_load_timestamp
//   - senate_bills_config_validation_errors_total{field}
//   - senate_bills_config_fallbacks_total{field}
//   - senate_bills_config_fallback_active
//
// Worker-specific metrics:
//   - senate_bills_cron_job_runs_total{status}: success, failure, skipped
//   - senate_bills_cron_job_duration_seconds
//   - senate_bills_cron_job_rows_exported_total
//   - senate_bills_cron_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	CronJobRowsExportedTotal    prometheus.Counter
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with the default registry.
// Call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics with reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "senate_bills"),

		CronJobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "senate_bills_cron_job_runs_total",
			Help: "Total number of scheduled crawl runs by status (success/failure/skipped)",
		}, []string{"status"}),

		CronJobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "senate_bills_cron_job_duration_seconds",
			Help:    "Duration of scheduled crawl runs in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1800},
		}),

		CronJobRowsExportedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "senate_bills_cron_job_rows_exported_total",
			Help: "Total number of rows exported across scheduled crawl runs",
		}),

		CronJobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "senate_bills_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled crawl",
		}),
	}
}

// RecordJobRun increments the job run counter for status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordRowsExported adds count to the exported rows counter.
func (m *WorkerMetrics) RecordRowsExported(count int) {
	m.CronJobRowsExportedTotal.Add(float64(count))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
