package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPageFetch(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		status int
		label  string
	}{
		{name: "ok listing", page: PageListing, status: 200, label: "200"},
		{name: "not found detail", page: PageDetail, status: 404, label: "404"},
		{name: "transport error", page: PageDetail, status: 0, label: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PageFetchesTotal.WithLabelValues(tt.page, tt.label)
			before := testutil.ToFloat64(c)

			RecordPageFetch(tt.page, tt.status, 150*time.Millisecond, 2048)

			assert.Equal(t, before+1, testutil.ToFloat64(c))
		})
	}
}

func TestRecordPageDisallowed(t *testing.T) {
	c := PageFetchesTotal.WithLabelValues(PageDetail, "disallowed")
	before := testutil.ToFloat64(c)

	RecordPageDisallowed(PageDetail)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordExtraction(t *testing.T) {
	senators := testutil.ToFloat64(SenatorsExtractedTotal)
	bills := testutil.ToFloat64(BillsExtractedTotal)

	RecordSenatorsExtracted(59)
	RecordBillsExtracted(12)

	assert.Equal(t, senators+59, testutil.ToFloat64(SenatorsExtractedTotal))
	assert.Equal(t, bills+12, testutil.ToFloat64(BillsExtractedTotal))
}

func TestRecordRowsSkipped(t *testing.T) {
	c := RowsSkippedTotal.WithLabelValues(PageListing)
	before := testutil.ToFloat64(c)

	RecordRowsSkipped(PageListing, 3)
	RecordRowsSkipped(PageListing, 0)

	assert.Equal(t, before+3, testutil.ToFloat64(c))
}

func TestRecordRowsWritten(t *testing.T) {
	c := RowsWrittenTotal.WithLabelValues("csv")
	before := testutil.ToFloat64(c)

	RecordRowsWritten("csv", 7)

	assert.Equal(t, before+7, testutil.ToFloat64(c))
}

func TestRecordPacingAndFailures(t *testing.T) {
	pacing := testutil.ToFloat64(PacingSecondsTotal)
	failures := testutil.ToFloat64(FetchFailuresTotal)

	RecordPacing(500 * time.Millisecond)
	RecordFetchFailure()

	assert.InDelta(t, pacing+0.5, testutil.ToFloat64(PacingSecondsTotal), 1e-9)
	assert.Equal(t, failures+1, testutil.ToFloat64(FetchFailuresTotal))
}

func TestRecordCrawlRun(t *testing.T) {
	t.Run("success publishes row count", func(t *testing.T) {
		c := CrawlRunsTotal.WithLabelValues("success")
		before := testutil.ToFloat64(c)

		RecordCrawlRun(true, time.Minute, 420)

		assert.Equal(t, before+1, testutil.ToFloat64(c))
		assert.Equal(t, float64(420), testutil.ToFloat64(LastRunRows))
	})

	t.Run("failure keeps previous row count", func(t *testing.T) {
		RecordCrawlRun(true, time.Minute, 10)
		c := CrawlRunsTotal.WithLabelValues("failure")
		before := testutil.ToFloat64(c)

		RecordCrawlRun(false, time.Second, 0)

		assert.Equal(t, before+1, testutil.ToFloat64(c))
		assert.Equal(t, float64(10), testutil.ToFloat64(LastRunRows))
	})
}

func TestRecordBreakerState(t *testing.T) {
	g := CircuitBreakerOpen.WithLabelValues("detail-fetch")

	RecordBreakerState("detail-fetch", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(g))

	RecordBreakerState("detail-fetch", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(g))
}
