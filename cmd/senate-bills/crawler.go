package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"senate-bills/internal/infra/adapter/persistence/postgres"
	"senate-bills/internal/infra/db"
	"senate-bills/internal/infra/export/csvexport"
	"senate-bills/internal/infra/scraper"
	"senate-bills/internal/infra/worker"
	"senate-bills/internal/usecase/crawl"
)

// newHTTPClient creates the client shared by page and robots.txt fetches.
// TLS 1.2+ is enforced.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// newCrawlService wires the fetcher, both extractors and the crawl service.
func newCrawlService(cfg *worker.CrawlConfig, logger *slog.Logger) (*crawl.Service, error) {
	policy, err := crawl.ParseFetchErrorPolicy(cfg.FetchErrorPolicy)
	if err != nil {
		return nil, err
	}
	flush, err := crawl.ParseFlushMode(cfg.FlushMode)
	if err != nil {
		return nil, err
	}

	client := newHTTPClient(cfg.HTTPTimeout)
	fetchOpts := []scraper.Option{
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithMaxBodySize(cfg.MaxBodySize),
		scraper.WithLogger(logger),
	}
	if cfg.RespectRobots {
		fetchOpts = append(fetchOpts, scraper.WithRobotsGate(scraper.NewRobotsGate(client, cfg.UserAgent, logger)))
	}
	fetcher := scraper.NewPageFetcher(client, fetchOpts...)

	listing := scraper.NewListingScraper(fetcher,
		scraper.WithDetailBaseURL(cfg.DetailBaseURL),
		scraper.WithListingLogger(logger))
	detail := scraper.NewDetailScraper(fetcher, logger)

	crawlCfg := crawl.DefaultConfig()
	crawlCfg.PacingDelay = cfg.PacingDelay
	crawlCfg.FetchErrorPolicy = policy
	crawlCfg.FlushMode = flush

	return crawl.NewService(listing, detail, nil, crawlCfg), nil
}

// crawlOnce runs one crawl into the CSV file and, when a database URL is
// configured, the bill_rows table.
func crawlOnce(ctx context.Context, cfg *worker.CrawlConfig, svc *crawl.Service, logger *slog.Logger) (*crawl.Stats, error) {
	listingURL, err := scraper.ListingURL(cfg.ListingURL, cfg.Assembly)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()

	csvSink := csvexport.NewFileSink(cfg.OutputPath, logger)
	sinks := crawl.MultiSink{csvSink}
	var dbSink *crawl.RepositorySink
	if cfg.DatabaseURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
		if err := db.MigrateUp(ctx, database); err != nil {
			return nil, err
		}
		dbSink = &crawl.RepositorySink{Repo: postgres.NewBillRowRepo(database), RunID: runID}
		sinks = append(sinks, dbSink)
	}

	stats, runErr := svc.Run(ctx, crawl.Request{
		ListingURL: listingURL,
		RunID:      runID,
		Sink:       sinks,
	})
	closeErr := sinks.Close()
	if runErr != nil {
		return stats, runErr
	}
	if closeErr != nil {
		return stats, fmt.Errorf("close sinks: %w", closeErr)
	}
	if dbSink != nil {
		if err := dbSink.Verify(ctx, stats.Rows); err != nil {
			return stats, err
		}
	}
	logger.Info("output written",
		slog.String("path", csvSink.Path()),
		slog.Int("rows", csvSink.Written()),
		slog.Bool("database", dbSink != nil))
	return stats, nil
}
