package worker

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	fileconfig "senate-bills/internal/config"
	"senate-bills/internal/infra/scraper"
	"senate-bills/internal/pkg/config"
)

// Accepted values for the string-typed policy fields.
var (
	fetchErrorPolicies = []string{"abort", "skip"}
	flushModes         = []string{"end", "incremental"}
)

// CrawlConfig holds every setting of a crawl run and of the scheduled worker.
//
// Configuration sources, later ones winning:
//   - Default values (DefaultConfig)
//   - The optional YAML crawl file (ApplyFile)
//   - Environment variables (ApplyEnv, fail-open)
//   - Command-line flags (applied by the CLI)
//
// Example usage:
//
//	cfg := DefaultConfig()
//	if err := cfg.ApplyFile(file); err != nil {
//	    return err
//	}
//	cfg.ApplyEnv(logger, metrics)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
type CrawlConfig struct {
	// ListingURL is the senate members index page.
	// Default: scraper.DefaultListingURL
	ListingURL string

	// DetailBaseURL is prefixed to each senator's bills href.
	// Default: scraper.DetailBaseURL
	DetailBaseURL string

	// Assembly selects a General Assembly by number ("98"). Empty means the
	// current assembly, i.e. ListingURL unchanged.
	Assembly string

	// PacingDelay is the pause after each senator's detail page.
	// Range: 0-1m
	// Default: 500ms
	PacingDelay time.Duration

	// OutputPath is the CSV file to create or truncate.
	// Default: "senate_bills.csv"
	OutputPath string

	// FetchErrorPolicy is "abort" or "skip".
	// Default: "abort"
	FetchErrorPolicy string

	// FlushMode is "end" or "incremental".
	// Default: "end"
	FlushMode string

	// HTTPTimeout bounds each request.
	// Default: 30s
	HTTPTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RespectRobots consults robots.txt before each fetch. Off by default so a
	// run only requests the listing and detail pages.
	// Default: false
	RespectRobots bool

	// MaxBodySize caps how many bytes of a page are read.
	MaxBodySize int64

	// CronSchedule is the five-field cron expression for the schedule command.
	// Default: "0 6 * * 1" (Mondays at 06:00)
	CronSchedule string

	// Timezone is the IANA timezone the cron schedule is evaluated in.
	// Default: "America/Chicago"
	Timezone string

	// HealthPort serves /health and /health/ready in scheduled mode.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// MetricsPort serves /metrics in scheduled mode.
	// Range: 1024-65535
	// Default: 9090
	MetricsPort int

	// DatabaseURL enables the Postgres sink when non-empty.
	DatabaseURL string
}

// DefaultConfig returns a CrawlConfig with default values.
func DefaultConfig() CrawlConfig {
	return CrawlConfig{
		ListingURL:       scraper.DefaultListingURL,
		DetailBaseURL:    scraper.DetailBaseURL,
		PacingDelay:      500 * time.Millisecond,
		OutputPath:       "senate_bills.csv",
		FetchErrorPolicy: "abort",
		FlushMode:        "end",
		HTTPTimeout:      30 * time.Second,
		UserAgent:        scraper.DefaultUserAgent,
		RespectRobots:    false,
		MaxBodySize:      scraper.DefaultMaxBodySize,
		CronSchedule:     "0 6 * * 1",
		Timezone:         "America/Chicago",
		HealthPort:       9091,
		MetricsPort:      9090,
	}
}

// ValidateAssembly accepts "" or a positive decimal number.
func ValidateAssembly(assembly string) error {
	if assembly == "" {
		return nil
	}
	n, err := strconv.Atoi(assembly)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid assembly '%s': must be a positive number", assembly)
	}
	return nil
}

func validatePacing(d time.Duration) error {
	return config.ValidateDuration(d, 0, time.Minute)
}

func validateServerPort(port int) error {
	return config.ValidateIntRange(port, 1024, 65535)
}

// Validate checks every field and returns all failures together.
func (c *CrawlConfig) Validate() error {
	var errors []error

	if err := config.ValidateURL(c.ListingURL); err != nil {
		errors = append(errors, fmt.Errorf("listing url: %w", err))
	}
	if err := config.ValidateURL(c.DetailBaseURL); err != nil {
		errors = append(errors, fmt.Errorf("detail base url: %w", err))
	}
	if err := ValidateAssembly(c.Assembly); err != nil {
		errors = append(errors, fmt.Errorf("assembly: %w", err))
	}
	if err := validatePacing(c.PacingDelay); err != nil {
		errors = append(errors, fmt.Errorf("pacing delay: %w", err))
	}
	if c.OutputPath == "" {
		errors = append(errors, fmt.Errorf("output path: cannot be empty"))
	}
	if err := config.ValidateOneOf(fetchErrorPolicies...)(c.FetchErrorPolicy); err != nil {
		errors = append(errors, fmt.Errorf("fetch error policy: %w", err))
	}
	if err := config.ValidateOneOf(flushModes...)(c.FlushMode); err != nil {
		errors = append(errors, fmt.Errorf("flush mode: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.HTTPTimeout); err != nil {
		errors = append(errors, fmt.Errorf("http timeout: %w", err))
	}
	if c.UserAgent == "" {
		errors = append(errors, fmt.Errorf("user agent: cannot be empty"))
	}
	if err := config.ValidatePositiveInt64(c.MaxBodySize); err != nil {
		errors = append(errors, fmt.Errorf("max body size: %w", err))
	}
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}
	if err := validateServerPort(c.HealthPort); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}
	if err := validateServerPort(c.MetricsPort); err != nil {
		errors = append(errors, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errors = append(errors, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// ApplyFile overlays the keys set in file. Unlike environment variables, a
// bad value in the file is an error: the file was written on purpose.
func (c *CrawlConfig) ApplyFile(file *fileconfig.CrawlFile) error {
	if file == nil {
		return nil
	}

	setString(&c.ListingURL, file.Crawl.ListingURL)
	setString(&c.DetailBaseURL, file.Crawl.DetailBaseURL)
	setString(&c.Assembly, file.Crawl.Assembly)
	setString(&c.FetchErrorPolicy, file.Crawl.FetchErrorPolicy)
	setString(&c.FlushMode, file.Crawl.FlushMode)
	if err := setDuration(&c.PacingDelay, file.Crawl.PacingDelay, "crawl.pacing_delay"); err != nil {
		return err
	}

	if err := setDuration(&c.HTTPTimeout, file.HTTP.Timeout, "http.timeout"); err != nil {
		return err
	}
	setString(&c.UserAgent, file.HTTP.UserAgent)
	if file.HTTP.RespectRobots != nil {
		c.RespectRobots = *file.HTTP.RespectRobots
	}
	if file.HTTP.MaxBodySize != nil {
		c.MaxBodySize = *file.HTTP.MaxBodySize
	}

	setString(&c.OutputPath, file.Output.Path)
	setString(&c.DatabaseURL, file.Output.DatabaseURL)

	setString(&c.CronSchedule, file.Schedule.Cron)
	setString(&c.Timezone, file.Schedule.Timezone)
	if file.Schedule.HealthPort != nil {
		c.HealthPort = *file.Schedule.HealthPort
	}
	if file.Schedule.MetricsPort != nil {
		c.MetricsPort = *file.Schedule.MetricsPort
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// LoadConfigFromEnv returns DefaultConfig overlaid with environment variables.
// It never fails; see ApplyEnv.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*CrawlConfig, error) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(logger, metrics)
	return &cfg, nil
}

// ApplyEnv overlays environment variables on c with the fail-open strategy:
// an unset variable keeps the current value, an invalid one keeps the current
// value and logs a warning, increments the fallback metrics and marks the
// fallback gauge active.
//
// Environment variables:
//   - LISTING_URL: http(s) URL of the members index
//   - DETAIL_BASE_URL: http(s) URL prefixed to bills hrefs
//   - SENATE_ASSEMBLY: General Assembly number, e.g. "98"
//   - PACING_DELAY: Duration 0-1m
//   - OUTPUT_PATH: CSV path
//   - FETCH_ERROR_POLICY: abort | skip
//   - FLUSH_MODE: end | incremental
//   - HTTP_TIMEOUT: Positive duration
//   - USER_AGENT: Request User-Agent
//   - RESPECT_ROBOTS: Boolean
//   - MAX_BODY_SIZE: Positive byte count
//   - CRON_SCHEDULE: Five-field cron expression
//   - WORKER_TIMEZONE: IANA timezone name
//   - WORKER_HEALTH_PORT: Integer 1024-65535
//   - METRICS_PORT: Integer 1024-65535
//   - DATABASE_URL: Postgres DSN; empty disables the database sink
//
// Warning log format:
//
//	logger.Warn("Configuration fallback applied",
//	    slog.String("field", "PacingDelay"),
//	    slog.String("warning", "Invalid PACING_DELAY='soon': ..."))
func (c *CrawlConfig) ApplyEnv(logger *slog.Logger, metrics *WorkerMetrics) {
	fallbackApplied := false
	check := func(result config.ConfigLoadResult, field, metricField string) config.ConfigLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(metricField)
			metrics.RecordFallback(metricField, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	c.ListingURL = check(config.LoadEnvWithFallback("LISTING_URL", c.ListingURL, config.ValidateURL),
		"ListingURL", "listing_url").Value.(string)
	c.DetailBaseURL = check(config.LoadEnvWithFallback("DETAIL_BASE_URL", c.DetailBaseURL, config.ValidateURL),
		"DetailBaseURL", "detail_base_url").Value.(string)
	c.Assembly = check(config.LoadEnvWithFallback("SENATE_ASSEMBLY", c.Assembly, ValidateAssembly),
		"Assembly", "assembly").Value.(string)
	c.PacingDelay = check(config.LoadEnvDuration("PACING_DELAY", c.PacingDelay, validatePacing),
		"PacingDelay", "pacing_delay").Value.(time.Duration)
	c.OutputPath = config.LoadEnvString("OUTPUT_PATH", c.OutputPath)
	c.FetchErrorPolicy = check(config.LoadEnvWithFallback("FETCH_ERROR_POLICY", c.FetchErrorPolicy, config.ValidateOneOf(fetchErrorPolicies...)),
		"FetchErrorPolicy", "fetch_error_policy").Value.(string)
	c.FlushMode = check(config.LoadEnvWithFallback("FLUSH_MODE", c.FlushMode, config.ValidateOneOf(flushModes...)),
		"FlushMode", "flush_mode").Value.(string)
	c.HTTPTimeout = check(config.LoadEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout, config.ValidatePositiveDuration),
		"HTTPTimeout", "http_timeout").Value.(time.Duration)
	c.UserAgent = config.LoadEnvString("USER_AGENT", c.UserAgent)
	c.RespectRobots = check(config.LoadEnvBool("RESPECT_ROBOTS", c.RespectRobots),
		"RespectRobots", "respect_robots").Value.(bool)
	c.MaxBodySize = check(config.LoadEnvInt64("MAX_BODY_SIZE", c.MaxBodySize, config.ValidatePositiveInt64),
		"MaxBodySize", "max_body_size").Value.(int64)
	c.CronSchedule = check(config.LoadEnvWithFallback("CRON_SCHEDULE", c.CronSchedule, config.ValidateCronSchedule),
		"CronSchedule", "cron_schedule").Value.(string)
	c.Timezone = check(config.LoadEnvWithFallback("WORKER_TIMEZONE", c.Timezone, config.ValidateTimezone),
		"Timezone", "timezone").Value.(string)
	c.HealthPort = check(config.LoadEnvInt("WORKER_HEALTH_PORT", c.HealthPort, validateServerPort),
		"HealthPort", "health_port").Value.(int)
	c.MetricsPort = check(config.LoadEnvInt("METRICS_PORT", c.MetricsPort, validateServerPort),
		"MetricsPort", "metrics_port").Value.(int)
	c.DatabaseURL = config.LoadEnvString("DATABASE_URL", c.DatabaseURL)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()
}
