package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "test message", slog.String("key", "value"))
	logger.Debug("filtered out")

	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestCreateLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "debug", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug("debug line")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.NotContains(t, entry, "run_id")
	assert.Contains(t, entry, "source")
}

func TestCreateLogger_Both(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")
	logger, err := createLogger(config.LoggingConfig{Level: "warn", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)
	defer CloseLogFile()

	logger.Info("dropped")
	logger.Warn("kept")

	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "dropped")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "kept")
}

func TestRunHandler_WithAttrsKeepsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "info", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := EnsureRunID(context.Background())
	runID := GetRunID(ctx)
	require.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(EnsureRunID(ctx)), "existing run id is kept")

	WithComponent(logger, "cleaner").WithGroup("stats").InfoContext(ctx, "cleaned", "rows", 3)

	assert.Contains(t, buf.String(), `"component":"cleaner"`)
	assert.Contains(t, buf.String(), runID)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.Same(t, logger, WithError(logger, nil))
	WithError(logger, assert.AnError).Info("x")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}

func TestGetRunID_Empty(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))
	assert.Len(t, NewRunID(), 36)
}
