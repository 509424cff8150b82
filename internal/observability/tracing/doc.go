// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are emitted for each page fetch, each extraction and the join loop.
// No exporter is configured here; the process installs one (or none, in which
// case the global no-op provider discards spans).
//
// Example usage:
//
//	import "senate-bills/internal/observability/tracing"
//
//	func fetch(ctx context.Context, url string) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "scraper.fetch", attribute.String("url", url))
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ... fetch ...
//	}
package tracing
