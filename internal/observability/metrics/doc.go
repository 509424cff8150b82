// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the crawler's metrics:
//   - Page fetch metrics (count by status, duration, size)
//   - Extraction metrics (senators, bills, skipped rows)
//   - Export metrics (rows per sink)
//   - Run metrics (result, duration, rows in the last run)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint of the schedule command.
//
// Example usage:
//
//	import "senate-bills/internal/observability/metrics"
//
//	func fetch(url string) {
//	    start := time.Now()
//	    // ... fetch page ...
//	    metrics.RecordPageFetch(metrics.PageDetail, resp.StatusCode, time.Since(start), len(body))
//	}
package metrics
