package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{name: "default log level (info)", logLevel: "", expected: slog.LevelInfo},
		{name: "debug log level", logLevel: "debug", expected: slog.LevelDebug},
		{name: "upper case", logLevel: "WARN", expected: slog.LevelWarn},
		{name: "error log level", logLevel: "error", expected: slog.LevelError},
		{name: "invalid log level defaults to info", logLevel: "invalid", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)

			assert.Equal(t, tt.expected, LevelFromEnv())
		})
	}
}

func TestNew_Formats(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		New(FormatJSON, &buf).Info("crawl started", slog.Int("senators", 3))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
		assert.Equal(t, "crawl started", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, float64(3), entry["senators"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		New("TEXT", &buf).Info("crawl started")

		assert.Contains(t, buf.String(), `msg="crawl started"`)
	})

	t.Run("unknown format falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		New("xml", &buf).Info("hello")

		assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}

func TestNew_DebugFiltering(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	logger := New(FormatJSON, &buf)

	logger.Debug("this should not appear")
	logger.Info("this should appear")

	assert.NotContains(t, buf.String(), "this should not appear")
	assert.Contains(t, buf.String(), "this should appear")
}

func TestWithRunID(t *testing.T) {
	tests := []struct {
		name   string
		runID  string
		expect bool
	}{
		{name: "with run ID", runID: "3b1f8c2e", expect: true},
		{name: "empty run ID", runID: "", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := WithRunID(slog.New(slog.NewJSONHandler(&buf, nil)), tt.runID)

			logger.Info("test message")

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			if tt.expect {
				assert.Equal(t, tt.runID, entry["run_id"])
			} else {
				assert.NotContains(t, entry, "run_id")
			}
		})
	}
}

func TestContextPropagation(t *testing.T) {
	t.Run("logger stored in context is returned", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), logger)

		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("default logger when absent", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})
}
