// Package config provides fail-open helpers for reading configuration from the
// environment. A missing variable yields the default silently; an unparsable or
// invalid one yields the default plus a warning, never an error, so a bad
// setting degrades a crawl instead of preventing it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
//
// Fields:
//   - Value: The loaded configuration value (the default if loading fell back)
//   - Warnings: One message per fallback applied
//   - FallbackApplied: True if the default replaced a value that was set but rejected
//
// Example:
//
//	result := LoadEnvDuration("HTTP_TIMEOUT", 30*time.Second, ValidatePositiveDuration)
//	for _, w := range result.Warnings {
//	    logger.Warn("configuration fallback", slog.String("warning", w))
//	}
//	delay := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// loadEnv is the common fail-open path. parse turns the raw string into T;
// validate, if non-nil, checks the parsed value.
func loadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(parsed)
	}
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fallbackWarning(envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// fallbackWarning formats:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func fallbackWarning(envKey, raw string, err error, defaultValue interface{}) string {
	return fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue)
}

// LoadEnvString loads a string value from an environment variable.
// If the environment variable is not set or empty, the default value is returned.
// No validation is performed; use LoadEnvWithFallback when the value must be checked.
//
// Example:
//
//	path := LoadEnvString("OUTPUT_PATH", "senate_bills.csv")
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string value from an environment variable
// and falls back to the default if validator rejects it.
//
// Parameters:
//   - envKey: Environment variable name to read
//   - defaultValue: Value to use if variable not set or validation fails
//   - validator: Validation function (can be nil to skip validation)
//
// Example:
//
//	result := LoadEnvWithFallback("FETCH_ERROR_POLICY", "abort", ValidateOneOf("abort", "skip"))
//	policy := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string ("500ms", "30s", "1h30m")
// from an environment variable. Parse and validation failures both fall back.
//
// Example:
//
//	result := LoadEnvDuration("HTTP_TIMEOUT", 30*time.Second, ValidatePositiveDuration)
//	timeout := result.Value.(time.Duration)
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer from an environment variable.
//
// Example:
//
//	result := LoadEnvInt("METRICS_PORT", 9090, func(v int) error { return ValidateIntRange(v, 1, 65535) })
//	port := result.Value.(int)
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvInt64 loads a base-10 64-bit integer, used for byte sizes.
func LoadEnvInt64(envKey string, defaultValue int64, validator func(int64) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, func(s string) (int64, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvBool loads a boolean using strconv.ParseBool spellings
// ("1", "t", "true", "TRUE", "0", "f", "false", ...).
//
// Example:
//
//	respect := LoadEnvBool("RESPECT_ROBOTS", true).Value.(bool)
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return v, nil
	}, nil)
}
