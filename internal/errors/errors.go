package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeMalformedInput = "MALFORMED_INPUT"
	CodeIncompleteRow  = "INCOMPLETE_ROW"
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeIOError        = "IO_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Common error constructors

// MalformedInput signals structurally broken input (missing required
// columns, non-numeric quantification cells, zero column sums). Fatal:
// the pipeline aborts.
func MalformedInput(format string, args ...interface{}) *AppError {
	return New(CodeMalformedInput, fmt.Sprintf(format, args...))
}

// IncompleteRow signals a row-level absence surviving aggregation.
// Recovered locally by exclusion; the count is surfaced in the run
// manifest rather than propagated as a failure.
func IncompleteRow(format string, args ...interface{}) *AppError {
	return New(CodeIncompleteRow, fmt.Sprintf(format, args...))
}

// ConfigInvalid signals a bad configuration value.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// IOError wraps a filesystem failure.
func IOError(err error, message string) *AppError {
	return &AppError{
		Code:    CodeIOError,
		Message: message,
		Cause:   err,
	}
}

// InternalError signals an unexpected internal failure.
func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
