package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingKey          ErrorType = "MISSING_KEY"
	ErrTypeParseFailure        ErrorType = "PARSE_FAILURE"
	ErrTypeReferentialMismatch ErrorType = "REFERENTIAL_MISMATCH"
	ErrTypeConnection          ErrorType = "CONNECTION_FAILURE"
	ErrTypeStorage             ErrorType = "STORAGE"
	ErrTypeInput               ErrorType = "INPUT"
	ErrTypeConfig              ErrorType = "CONFIG"
	ErrTypeValidation          ErrorType = "VALIDATION"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any AppError in err's chain has the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// TypeOf returns the type of the outermost AppError, or "" when err carries none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for common error types

// NewMissingKeyError reports required columns absent from a source
func NewMissingKeyError(source string, columns []string) *AppError {
	return NewAppError(ErrTypeMissingKey, fmt.Sprintf("%s is missing required columns %v", source, columns), nil).
		WithContext("source", source).
		WithContext("columns", columns)
}

// NewParseFailureError creates a parsing-related error
func NewParseFailureError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParseFailure, message, cause)
}

// NewReferentialMismatchError creates an error for keys that cannot be resolved against a reference table
func NewReferentialMismatchError(message string) *AppError {
	return NewAppError(ErrTypeReferentialMismatch, message, nil)
}

// NewConnectionError creates a database connection error
func NewConnectionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConnection, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewInputError creates an error for unreadable or absent input files
func NewInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInput, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}
