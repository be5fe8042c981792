package errors

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Process exit codes returned by the CLI
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitInput    = 3
	ExitStorage  = 4
	ExitCanceled = 130
)

// ErrorHandler provides centralized error handling for command execution
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err with its classification and returns the exit code
func (h *ErrorHandler) HandleError(ctx context.Context, command string, err error) int {
	if err == nil {
		return ExitOK
	}

	attrs := []any{
		slog.String("command", command),
		slog.String("error", err.Error()),
		slog.String("error_type", string(TypeOf(err))),
	}
	var appErr *AppError
	if errors.As(err, &appErr) && len(appErr.Context) > 0 {
		attrs = append(attrs, slog.Any("details", appErr.Context))
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", getStackTrace()))
	}

	h.logger.ErrorContext(ctx, "command failed", attrs...)
	return ExitCode(err)
}

// HandlePanic logs a recovered panic and returns the failure exit code
func (h *ErrorHandler) HandlePanic(ctx context.Context, command string, recovered interface{}) int {
	h.logger.ErrorContext(ctx, "panic recovered",
		slog.String("command", command),
		slog.Any("panic", recovered),
		slog.String("stack", string(debug.Stack())),
	)
	return ExitFailure
}

// ExitCode maps an error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitCanceled
	}
	switch TypeOf(err) {
	case ErrTypeConfig, ErrTypeValidation:
		return ExitUsage
	case ErrTypeInput, ErrTypeMissingKey, ErrTypeParseFailure:
		return ExitInput
	case ErrTypeConnection, ErrTypeStorage:
		return ExitStorage
	default:
		return ExitFailure
	}
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
