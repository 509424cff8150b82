// Package crawl joins senators with their bills and hands the flattened rows
// to the configured sinks.
package crawl

import "errors"

// Sentinel errors for crawl operations.
var (
	// ErrTooManyFetchFailures indicates that detail fetches kept failing under
	// the skip policy and the circuit breaker stopped the crawl.
	ErrTooManyFetchFailures = errors.New("too many detail page fetch failures")

	// ErrUnknownFetchErrorPolicy indicates an unrecognised fetch error policy name.
	ErrUnknownFetchErrorPolicy = errors.New("unknown fetch error policy")

	// ErrUnknownFlushMode indicates an unrecognised flush mode name.
	ErrUnknownFlushMode = errors.New("unknown flush mode")

	// ErrStoredRowsMismatch indicates that the database holds a different
	// number of rows for a run than the crawl produced.
	ErrStoredRowsMismatch = errors.New("stored row count does not match crawl")
)
