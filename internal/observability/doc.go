// Package observability groups the crawler's logging, metrics and tracing.
//
// Every metric is prefixed senate_bills_ and registered on the default
// Prometheus registry; the schedule command serves it on /metrics. Spans
// wrap the run, the join and every page fetch and extraction.
package observability
