package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	fileconfig "senate-bills/internal/config"
	"senate-bills/internal/infra/worker"
	"senate-bills/internal/observability/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath   string
	logFormat    string
	listingURL   string
	assembly     string
	pacing       time.Duration
	output       string
	onFetchError string
	flush        string

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

func newRootOptions() *rootOptions {
	return &rootOptions{
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "senate-bills",
		Short:         "senate-bills crawls senate members and their sponsored bills into a CSV table.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML crawl file")
	f.StringVar(&opts.logFormat, "log-format", logging.FormatJSON, "log output format: json or text")
	f.StringVar(&opts.listingURL, "listing-url", "", "senate members index URL")
	f.StringVar(&opts.assembly, "assembly", "", "General Assembly number, e.g. 98 (default: current)")
	f.DurationVar(&opts.pacing, "pacing", 0, "pause after each senator's bills page (default 500ms)")
	f.StringVar(&opts.output, "output", "", "CSV output path (default senate_bills.csv)")
	f.StringVar(&opts.onFetchError, "on-fetch-error", "", "detail page fetch failures: abort or skip")
	f.StringVar(&opts.flush, "flush", "", "when rows are written: end or incremental")

	cmd.AddCommand(newRunCmd(opts), newScheduleCmd(opts))
	return cmd
}

func (o *rootOptions) newLogger(cmd *cobra.Command) *slog.Logger {
	return logging.New(o.logFormat, cmd.ErrOrStderr())
}

// loadConfig layers defaults, the crawl file, the environment and the flags
// that were set explicitly, then validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command, logger *slog.Logger, metrics *worker.WorkerMetrics) (*worker.CrawlConfig, error) {
	cfg := worker.DefaultConfig()

	if o.configPath != "" {
		file, err := fileconfig.LoadCrawlFile(o.configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, fmt.Errorf("config file %s: %w", o.configPath, err)
		}
	}

	cfg.ApplyEnv(logger, metrics)

	flags := cmd.Flags()
	if flags.Changed("listing-url") {
		cfg.ListingURL = o.listingURL
	}
	if flags.Changed("assembly") {
		cfg.Assembly = o.assembly
	}
	if flags.Changed("pacing") {
		cfg.PacingDelay = o.pacing
	}
	if flags.Changed("output") {
		cfg.OutputPath = o.output
	}
	if flags.Changed("on-fetch-error") {
		cfg.FetchErrorPolicy = o.onFetchError
	}
	if flags.Changed("flush") {
		cfg.FlushMode = o.flush
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setup is the common prologue of every subcommand.
func (o *rootOptions) setup(cmd *cobra.Command) (*slog.Logger, *worker.CrawlConfig, *worker.WorkerMetrics, error) {
	logger := o.newLogger(cmd)
	metrics := worker.NewWorkerMetricsWith(o.registerer)

	cfg, err := o.loadConfig(cmd, logger, metrics)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("configuration loaded",
		slog.String("listing_url", cfg.ListingURL),
		slog.String("assembly", cfg.Assembly),
		slog.Duration("pacing_delay", cfg.PacingDelay),
		slog.String("output", cfg.OutputPath),
		slog.String("fetch_error_policy", cfg.FetchErrorPolicy),
		slog.String("flush_mode", cfg.FlushMode),
		slog.Bool("respect_robots", cfg.RespectRobots),
		slog.Bool("database_sink", cfg.DatabaseURL != ""))
	return logger, cfg, metrics, nil
}
