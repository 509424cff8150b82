// Package circuitbreaker stops a crawl whose detail pages keep failing.
// It wraps github.com/sony/gobreaker with failure classification, logging and
// a state gauge.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/observability/metrics"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name labels logs and the senate_bills_circuit_breaker_open gauge.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never clears
	// them, so the ratio covers the whole crawl.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker, e.g. 0.6.
	FailureThreshold float64

	// MinRequests is the number of requests needed before the ratio is checked.
	MinRequests uint32

	// IsFailure classifies an error. Errors it rejects count as successes.
	// Nil counts every error.
	IsFailure func(error) bool

	// Logger receives state changes. Nil uses slog.Default().
	Logger *slog.Logger
}

// DetailFetchConfig returns the configuration used for senator detail pages
// when failed fetches are skipped. Once 5 fetches have been attempted and 60%
// of them failed, the site is treated as down and the crawl stops.
// The open timeout outlasts any realistic crawl, so an opened breaker stays open.
func DetailFetchConfig() Config {
	return Config{
		Name:             "detail-fetch",
		MaxRequests:      1,
		Interval:         0,
		Timeout:          time.Hour,
		FailureThreshold: 0.6,
		MinRequests:      5,
		IsFailure:        IsFetchFailure,
	}
}

// IsFetchFailure reports whether err is a failed page fetch. Cancellation is
// not the site's fault and does not count.
func IsFetchFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, entity.ErrFetchFailed)
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed circuit breaker.
func New(cfg Config) *CircuitBreaker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordBreakerState(name, to == gobreaker.StateOpen)
		},
	}
	if cfg.IsFailure != nil {
		isFailure := cfg.IsFailure
		settings.IsSuccessful = func(err error) bool { return err == nil || !isFailure(err) }
	}

	metrics.RecordBreakerState(cfg.Name, false)
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the breaker. While open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do is Execute with a typed result.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	v, _ := result.(T)
	return v, err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Counts returns the request counts of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
