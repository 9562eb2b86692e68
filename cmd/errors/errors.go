package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeGeometry ErrorType = "geometry"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewConfigError reports invalid command line input. It aborts the run.
func NewConfigError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Cause: cause}
}

// NewIOError reports a file that could not be read, decoded, encoded or written.
func NewIOError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeIO, Message: message, Cause: cause}
}

// NewGeometryError reports a crop rectangle that had to be clamped.
func NewGeometryError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeGeometry, Message: message, Cause: cause}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}
