package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewErrorHandler(logger, includeStack), &buf
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("x"), ExitFailure},
		{"config", NewConfigError("bad", nil), ExitUsage},
		{"missing key", NewMissingKeyError("coverage", []string{"CODE"}), ExitInput},
		{"input", NewInputError("absent", nil), ExitInput},
		{"connection", NewConnectionError("dial", nil), ExitStorage},
		{"wrapped storage", fmt.Errorf("load: %w", NewStorageError("insert", nil)), ExitStorage},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), ExitCanceled},
		{"referential", NewReferentialMismatchError("x"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	h, buf := newTestHandler(false)

	code := h.HandleError(context.Background(), "process",
		NewMissingKeyError("incidence", []string{"DENOMINATOR"}))
	assert.Equal(t, ExitInput, code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "command failed", entry["msg"])
	assert.Equal(t, "process", entry["command"])
	assert.Equal(t, "MISSING_KEY", entry["error_type"])
	assert.Equal(t, "error_handler", entry["component"])
	assert.NotContains(t, entry, "stack")
	assert.Contains(t, entry, "details")
}

func TestErrorHandler_NilError(t *testing.T) {
	h, buf := newTestHandler(true)
	assert.Equal(t, ExitOK, h.HandleError(context.Background(), "load", nil))
	assert.Zero(t, buf.Len())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h, buf := newTestHandler(true)
	h.HandleError(context.Background(), "load", errors.New("x"))
	assert.Contains(t, buf.String(), "\"stack\"")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	h, buf := newTestHandler(false)
	assert.Equal(t, ExitFailure, h.HandlePanic(context.Background(), "analyze", "boom"))
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}
