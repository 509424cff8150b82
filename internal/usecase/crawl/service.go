package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/observability/logging"
	"senate-bills/internal/observability/metrics"
	"senate-bills/internal/observability/tracing"
	"senate-bills/internal/resilience/circuitbreaker"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// SenatorLister extracts senators from the listing page.
type SenatorLister interface {
	ExtractSenators(ctx context.Context, pageURL string) ([]entity.Senator, error)
}

// BillLister extracts one senator's bills from their detail page.
type BillLister interface {
	ExtractBills(ctx context.Context, detailURL string) ([]entity.Bill, error)
}

// FetchErrorPolicy decides what a failed detail fetch does to the crawl.
type FetchErrorPolicy string

const (
	// PolicyAbort stops the crawl on the first failed fetch.
	PolicyAbort FetchErrorPolicy = "abort"
	// PolicySkip logs the failure, drops that senator and continues until
	// the circuit breaker opens.
	PolicySkip FetchErrorPolicy = "skip"
)

// ParseFetchErrorPolicy converts a configuration value.
func ParseFetchErrorPolicy(s string) (FetchErrorPolicy, error) {
	switch p := FetchErrorPolicy(s); p {
	case PolicyAbort, PolicySkip:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFetchErrorPolicy, s)
}

// FlushMode decides when rows reach the sink.
type FlushMode string

const (
	// FlushAtEnd writes every row once the whole crawl has succeeded.
	FlushAtEnd FlushMode = "end"
	// FlushIncremental writes each senator's rows as soon as they are joined.
	FlushIncremental FlushMode = "incremental"
)

// ParseFlushMode converts a configuration value.
func ParseFlushMode(s string) (FlushMode, error) {
	switch m := FlushMode(s); m {
	case FlushAtEnd, FlushIncremental:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlushMode, s)
}

// Config holds the crawl behaviour settings.
type Config struct {
	PacingDelay      time.Duration
	FetchErrorPolicy FetchErrorPolicy
	FlushMode        FlushMode
	// Breaker applies under PolicySkip. A fresh breaker is used for every run.
	Breaker circuitbreaker.Config
}

// DefaultConfig returns the settings that reproduce the plain crawl:
// half a second between senators, abort on failure, write at the end.
func DefaultConfig() Config {
	return Config{
		PacingDelay:      500 * time.Millisecond,
		FetchErrorPolicy: PolicyAbort,
		FlushMode:        FlushAtEnd,
		Breaker:          circuitbreaker.DetailFetchConfig(),
	}
}

// Service runs the two-stage crawl: list senators, then fetch each senator's
// bills one at a time with a fixed pause in between.
type Service struct {
	Senators SenatorLister
	Bills    BillLister
	Sleeper  Sleeper
	config   Config
}

// NewService creates a Service. A nil sleeper uses TimerSleeper.
func NewService(senators SenatorLister, bills BillLister, sleeper Sleeper, cfg Config) *Service {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	return &Service{
		Senators: senators,
		Bills:    bills,
		Sleeper:  sleeper,
		config:   cfg,
	}
}

// Request describes one crawl run.
type Request struct {
	ListingURL string
	// RunID tags logs and stored rows. Generated when empty.
	RunID string
	Sink  RowSink
}

// Stats contains statistics about a crawl run.
type Stats struct {
	RunID          string
	Senators       int
	Bills          int
	Rows           int
	FailedSenators []string
	Duration       time.Duration
}

// Run crawls the listing page and every senator's bills page, writing the
// joined rows to req.Sink according to the flush mode. In end mode nothing is
// written unless the whole crawl succeeds.
func (s *Service) Run(ctx context.Context, req Request) (_ *Stats, err error) {
	start := time.Now()
	stats := &Stats{RunID: req.RunID}
	if stats.RunID == "" {
		stats.RunID = uuid.NewString()
	}

	logger := logging.WithRunID(logging.FromContext(ctx), stats.RunID)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartSpan(ctx, "crawl.run",
		attribute.String("run_id", stats.RunID),
		attribute.String("listing_url", req.ListingURL))
	defer func() {
		stats.Duration = time.Since(start)
		metrics.RecordCrawlRun(err == nil, stats.Duration, stats.Rows)
		tracing.EndSpan(span, err)
	}()

	logger.Info("crawl started",
		slog.String("listing_url", req.ListingURL),
		slog.Duration("pacing_delay", s.config.PacingDelay),
		slog.String("fetch_error_policy", string(s.config.FetchErrorPolicy)),
		slog.String("flush_mode", string(s.config.FlushMode)))

	senators, err := s.Senators.ExtractSenators(ctx, req.ListingURL)
	if err != nil {
		logger.Error("listing extraction failed", slog.Any("error", err))
		return stats, err
	}
	stats.Senators = len(senators)

	// An empty first batch creates the output and its header, so an empty
	// listing still replaces the previous run's file.
	if s.config.FlushMode == FlushIncremental {
		if err := req.Sink.WriteRows(ctx, nil); err != nil {
			logger.Error("opening sink failed", slog.Any("error", err))
			return stats, err
		}
	}

	var all []entity.BillRow
	emit := func(ctx context.Context, rows []entity.BillRow) error {
		stats.Rows += len(rows)
		if s.config.FlushMode == FlushIncremental {
			return req.Sink.WriteRows(ctx, rows)
		}
		all = append(all, rows...)
		return nil
	}

	if err := s.join(ctx, senators, s.config.PacingDelay, emit, stats); err != nil {
		logger.Error("crawl failed",
			slog.Int("rows_joined", stats.Rows),
			slog.Any("error", err))
		return stats, err
	}

	if s.config.FlushMode != FlushIncremental {
		if err := req.Sink.WriteRows(ctx, all); err != nil {
			logger.Error("writing rows failed", slog.Any("error", err))
			return stats, err
		}
	}

	logger.Info("crawl completed",
		slog.Int("senators", stats.Senators),
		slog.Int("bills", stats.Bills),
		slog.Int("rows", stats.Rows),
		slog.Int("failed_senators", len(stats.FailedSenators)),
		slog.Duration("duration", time.Since(start)))

	return stats, nil
}

// Join fetches each senator's bills in order and flattens them into rows,
// pausing for pacing after every senator. Entity order and bill order are kept.
func (s *Service) Join(ctx context.Context, senators []entity.Senator, pacing time.Duration) ([]entity.BillRow, error) {
	var rows []entity.BillRow
	err := s.join(ctx, senators, pacing, func(_ context.Context, batch []entity.BillRow) error {
		rows = append(rows, batch...)
		return nil
	}, &Stats{})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// emitFunc receives one senator's rows.
type emitFunc func(ctx context.Context, rows []entity.BillRow) error

func (s *Service) join(ctx context.Context, senators []entity.Senator, pacing time.Duration, emit emitFunc, stats *Stats) (err error) {
	ctx, span := tracing.StartSpan(ctx, "crawl.join", attribute.Int("senators", len(senators)))
	defer func() { tracing.EndSpan(span, err) }()

	logger := logging.FromContext(ctx)

	var breaker *circuitbreaker.CircuitBreaker
	if s.config.FetchErrorPolicy == PolicySkip {
		cfg := s.config.Breaker
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		breaker = circuitbreaker.New(cfg)
	}

	for i, senator := range senators {
		bills, err := s.fetchBills(ctx, breaker, senator)
		switch {
		case err == nil:
		case errors.Is(err, gobreaker.ErrOpenState):
			return fmt.Errorf("senator %d/%d %s: %w", i+1, len(senators), senator.Name, ErrTooManyFetchFailures)
		case breaker != nil && ctx.Err() == nil && errors.Is(err, entity.ErrFetchFailed):
			metrics.RecordFetchFailure()
			stats.FailedSenators = append(stats.FailedSenators, senator.Name)
			logger.Warn("skipping senator after failed fetch",
				slog.String("senator", senator.Name),
				slog.String("url", senator.DetailURL),
				slog.Any("error", err))
		default:
			return fmt.Errorf("senator %d/%d %s: %w", i+1, len(senators), senator.Name, err)
		}

		rows := make([]entity.BillRow, 0, len(bills))
		for _, b := range bills {
			rows = append(rows, entity.NewBillRow(senator, b))
		}
		stats.Bills += len(bills)

		if err := emit(ctx, rows); err != nil {
			return err
		}

		logger.Debug("senator joined",
			slog.Int("index", i),
			slog.String("senator", senator.Name),
			slog.Int("bills", len(bills)))

		// Unconditional: zero-bill and skipped senators pause too.
		if err := s.Sleeper.Sleep(ctx, pacing); err != nil {
			return fmt.Errorf("pause after senator %s: %w", senator.Name, err)
		}
		metrics.RecordPacing(pacing)
	}

	return nil
}

func (s *Service) fetchBills(ctx context.Context, breaker *circuitbreaker.CircuitBreaker, senator entity.Senator) ([]entity.Bill, error) {
	if breaker == nil {
		return s.Bills.ExtractBills(ctx, senator.DetailURL)
	}
	return circuitbreaker.Do(breaker, func() ([]entity.Bill, error) {
		return s.Bills.ExtractBills(ctx, senator.DetailURL)
	})
}
