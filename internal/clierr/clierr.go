// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for script consumption.
package clierr

import (
	"fmt"
)

// Error code constants — uppercase, underscore-separated, stable across minor versions.
const (
	ConfigNotFound      = "CONFIG_NOT_FOUND"
	ConfigInvalid       = "CONFIG_INVALID"
	ConfigAlreadyExists = "CONFIG_ALREADY_EXISTS"
	BrowserOpenFailed   = "BROWSER_OPEN_FAILED"
	NavigationTimeout   = "NAVIGATION_TIMEOUT"
	ExtractionFailed    = "EXTRACTION_FAILED"
	ReportWriteFailed   = "REPORT_WRITE_FAILED"
	DraftPresentFailed  = "DRAFT_PRESENT_FAILED"
	InternalError       = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrapf creates an Error with a formatted message and an underlying cause.
func Wrapf(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}
