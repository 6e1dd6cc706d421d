// Package errors defines common error types for the ball-tree builder,
// mapping directly onto the error taxonomy of the build pipeline: usage
// errors, resource-exhaustion, transport (team collective) failures, and
// invariant violations.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeUsageError         = "USAGE_ERROR"
	CodeAllocationError    = "ALLOCATION_ERROR"
	CodeTransportError     = "TRANSPORT_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeConfigError        = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrUsageError         = New(CodeUsageError, "usage error")
	ErrAllocationError    = New(CodeAllocationError, "allocation failure")
	ErrTransportError     = New(CodeTransportError, "transport failure")
	ErrInvariantViolation = New(CodeInvariantViolation, "invariant violation")
	ErrConfigError        = New(CodeConfigError, "configuration error")
)

// IsUsageError checks if the error is a usage error (bad CLI arguments).
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsageError)
}

// IsTransportError checks if the error is a team-collective transport failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransportError)
}

// IsInvariantViolation checks if the error is an invariant violation
// (e.g. r < l on entry to selection, projection count mismatch after
// redistribution).
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
