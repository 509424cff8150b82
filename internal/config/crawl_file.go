// Package config loads the optional YAML crawl file.
// Keys left out of the file keep whatever value the caller already has.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CrawlFile mirrors the crawl settings that may be pinned in a YAML file.
// Durations are Go duration strings ("500ms", "30s").
type CrawlFile struct {
	Crawl struct {
		ListingURL       *string `yaml:"listing_url"`
		DetailBaseURL    *string `yaml:"detail_base_url"`
		Assembly         *string `yaml:"assembly"`
		PacingDelay      *string `yaml:"pacing_delay"`
		FetchErrorPolicy *string `yaml:"on_fetch_error"`
		FlushMode        *string `yaml:"flush"`
	} `yaml:"crawl"`
	HTTP struct {
		Timeout       *string `yaml:"timeout"`
		UserAgent     *string `yaml:"user_agent"`
		RespectRobots *bool   `yaml:"respect_robots"`
		MaxBodySize   *int64  `yaml:"max_body_size"`
	} `yaml:"http"`
	Output struct {
		Path        *string `yaml:"path"`
		DatabaseURL *string `yaml:"database_url"`
	} `yaml:"output"`
	Schedule struct {
		Cron        *string `yaml:"cron"`
		Timezone    *string `yaml:"timezone"`
		HealthPort  *int    `yaml:"health_port"`
		MetricsPort *int    `yaml:"metrics_port"`
	} `yaml:"schedule"`
}

// LoadCrawlFile reads and decodes the crawl file at path.
// Unknown keys are rejected so a typo does not silently fall back to a default.
func LoadCrawlFile(path string) (*CrawlFile, error) {
	// #nosec G304 -- path comes from the --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseCrawlFile(data)
}

// ParseCrawlFile decodes crawl file contents. An empty or comment-only
// document yields a file with every key unset.
func ParseCrawlFile(data []byte) (*CrawlFile, error) {
	var file CrawlFile
	if strings.TrimSpace(string(data)) == "" {
		return &file, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &file, nil
}
