// Package metrics provides centralized Prometheus metrics for the crawler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound HTTP metrics track page fetches against the source site
var (
	// PageFetchesTotal counts page fetches by page kind and outcome status.
	// status is the HTTP status code, "error" for transport failures or
	// "disallowed" when robots.txt blocks the URL.
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senate_bills_http_requests_total",
			Help: "Total number of page fetches against the source site",
		},
		[]string{"page", "status"},
	)

	// PageFetchDuration measures page fetch duration in seconds
	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "senate_bills_http_request_duration_seconds",
			Help:    "Page fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page"},
	)

	// PageBytes measures the size of fetched page bodies
	PageBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "senate_bills_page_size_bytes",
			Help:    "Fetched page body size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"page"},
	)
)

// Crawl metrics track extraction and export
var (
	// SenatorsExtractedTotal counts senator records extracted from the listing page
	SenatorsExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "senate_bills_senators_extracted_total",
			Help: "Total number of senator records extracted",
		},
	)

	// BillsExtractedTotal counts bill records extracted from detail pages
	BillsExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "senate_bills_bills_extracted_total",
			Help: "Total number of bill records extracted",
		},
	)

	// RowsSkippedTotal counts table rows rejected by the structural filters
	RowsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senate_bills_rows_skipped_total",
			Help: "Total number of table rows skipped as non-data rows",
		},
		[]string{"page"},
	)

	// RowsWrittenTotal counts joined rows handed to each sink
	RowsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senate_bills_rows_written_total",
			Help: "Total number of joined rows written",
		},
		[]string{"sink"},
	)

	// FetchFailuresTotal counts detail fetches skipped under the skip policy
	FetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "senate_bills_fetch_failures_total",
			Help: "Total number of senators skipped because their detail page could not be fetched",
		},
	)

	// PacingSecondsTotal accumulates time spent in the inter-senator pause
	PacingSecondsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "senate_bills_pacing_seconds_total",
			Help: "Total seconds spent pausing between detail fetches",
		},
	)

	// CrawlRunsTotal counts finished crawl runs by result
	CrawlRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senate_bills_crawl_runs_total",
			Help: "Total number of crawl runs by result",
		},
		[]string{"result"},
	)

	// CrawlDuration measures end-to-end crawl duration in seconds
	CrawlDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "senate_bills_crawl_duration_seconds",
			Help:    "Crawl run duration in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	// LastRunRows is the number of joined rows produced by the last successful run
	LastRunRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "senate_bills_last_run_rows",
			Help: "Joined rows produced by the most recent successful run",
		},
	)

	// CircuitBreakerOpen is 1 while the named breaker is open
	CircuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "senate_bills_circuit_breaker_open",
			Help: "1 if the circuit breaker is open, 0 otherwise",
		},
		[]string{"circuit"},
	)
)
