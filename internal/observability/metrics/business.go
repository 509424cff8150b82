package metrics

import (
	"strconv"
	"time"
)

// Page kinds used as the "page" label.
const (
	PageListing = "listing"
	PageDetail  = "detail"
	// PageDetailWindow labels detail rows that passed the marker filter but
	// had too few cells for the output window.
	PageDetailWindow = "detail_window"
	PageRobots       = "robots"
)

// RecordPageFetch records the outcome and duration of one page fetch.
// A status of 0 is recorded as "error".
func RecordPageFetch(page string, status int, duration time.Duration, size int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	PageFetchesTotal.WithLabelValues(page, label).Inc()
	PageFetchDuration.WithLabelValues(page).Observe(duration.Seconds())
	if size > 0 {
		PageBytes.WithLabelValues(page).Observe(float64(size))
	}
}

// RecordPageDisallowed records a fetch blocked by robots.txt.
func RecordPageDisallowed(page string) {
	PageFetchesTotal.WithLabelValues(page, "disallowed").Inc()
}

// RecordSenatorsExtracted adds count to the senator counter.
func RecordSenatorsExtracted(count int) {
	SenatorsExtractedTotal.Add(float64(count))
}

// RecordBillsExtracted adds count to the bill counter.
func RecordBillsExtracted(count int) {
	BillsExtractedTotal.Add(float64(count))
}

// RecordRowsSkipped records rows rejected on the given page kind.
func RecordRowsSkipped(page string, count int) {
	if count <= 0 {
		return
	}
	RowsSkippedTotal.WithLabelValues(page).Add(float64(count))
}

// RecordRowsWritten records rows handed to a sink ("csv", "postgres").
func RecordRowsWritten(sink string, count int) {
	RowsWrittenTotal.WithLabelValues(sink).Add(float64(count))
}

// RecordFetchFailure records one senator skipped after a failed detail fetch.
func RecordFetchFailure() {
	FetchFailuresTotal.Inc()
}

// RecordPacing records time spent in the inter-senator pause.
func RecordPacing(d time.Duration) {
	PacingSecondsTotal.Add(d.Seconds())
}

// RecordCrawlRun records a finished crawl.
//
// Parameters:
//   - success: whether the run completed without a fatal error
//   - duration: wall time of the run
//   - rows: joined rows produced (only published for successful runs)
func RecordCrawlRun(success bool, duration time.Duration, rows int) {
	result := "success"
	if !success {
		result = "failure"
	}
	CrawlRunsTotal.WithLabelValues(result).Inc()
	CrawlDuration.Observe(duration.Seconds())
	if success {
		LastRunRows.Set(float64(rows))
	}
}

// RecordBreakerState publishes whether the named circuit breaker is open.
func RecordBreakerState(circuit string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	CircuitBreakerOpen.WithLabelValues(circuit).Set(v)
}
