package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"senate-bills/internal/infra/worker"
	"senate-bills/internal/usecase/crawl"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Crawl on a cron schedule, serving health and metrics endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, metrics, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			svc, err := newCrawlService(cfg, logger)
			if err != nil {
				return err
			}

			return runScheduler(cmd.Context(), cfg, logger, metrics, opts, func(ctx context.Context) (*crawl.Stats, error) {
				return crawlOnce(ctx, cfg, svc, logger)
			})
		},
	}
}

// runScheduler serves health and metrics and runs crawlFn on the cron
// schedule until ctx is cancelled. Overlapping runs are skipped.
func runScheduler(ctx context.Context, cfg *worker.CrawlConfig, logger *slog.Logger, metrics *worker.WorkerMetrics, opts *rootOptions, crawlFn func(context.Context) (*crawl.Stats, error)) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	metricsServer := newMetricsServer(fmt.Sprintf(":%d", cfg.MetricsPort), opts.gatherer)

	g, ctx := errgroup.WithContext(ctx)

	job := &crawlJob{
		ctx:     ctx,
		crawl:   crawlFn,
		logger:  logger,
		metrics: metrics,
		health:  healthServer,
	}
	cronLogger := &slogCronLogger{logger: logger, metrics: metrics}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddJob(cfg.CronSchedule, job); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	g.Go(func() error {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return serveMetrics(ctx, metricsServer, logger)
	})
	g.Go(func() error {
		c.Start()
		healthServer.SetReady(true)
		logger.Info("scheduler started",
			slog.String("schedule", cfg.CronSchedule),
			slog.String("timezone", cfg.Timezone))

		<-ctx.Done()
		healthServer.SetReady(false)
		<-c.Stop().Done()
		logger.Info("scheduler stopped")
		return nil
	})

	return g.Wait()
}

// crawlJob is the cron.Job running one crawl and recording its outcome.
type crawlJob struct {
	ctx     context.Context
	crawl   func(context.Context) (*crawl.Stats, error)
	logger  *slog.Logger
	metrics *worker.WorkerMetrics
	health  *worker.HealthServer
}

func (j *crawlJob) Run() {
	start := time.Now()
	j.logger.Info("scheduled crawl started")

	stats, err := j.crawl(j.ctx)
	j.metrics.RecordJobDuration(time.Since(start).Seconds())

	var runID string
	var rows int
	if stats != nil {
		runID, rows = stats.RunID, stats.Rows
	}
	j.health.RecordRun(runID, rows, err)

	if err != nil {
		j.metrics.RecordJobRun("failure")
		j.logger.Error("scheduled crawl failed",
			slog.String("run_id", runID),
			slog.Any("error", err))
		return
	}

	j.metrics.RecordJobRun("success")
	j.metrics.RecordRowsExported(rows)
	j.metrics.RecordLastSuccess()
	j.logger.Info("scheduled crawl completed",
		slog.String("run_id", runID),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
}

// slogCronLogger adapts slog to cron.Logger. SkipIfStillRunning reports a
// skipped run as an Info "skip" message, which is counted here.
type slogCronLogger struct {
	logger  *slog.Logger
	metrics *worker.WorkerMetrics
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.metrics.RecordJobRun("skipped")
		l.logger.Warn("scheduled crawl skipped, previous run still in progress")
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
