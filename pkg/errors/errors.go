// Package errors provides structured error types for libmirror.
//
// This package defines error codes and types that enable:
//   - Consistent error reporting across the CLI and the mirror pipeline
//   - Machine-readable codes for telling fatal from recoverable failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
//   - INVALID_*: Coordinate, document, or configuration validation failures
//   - NOT_FOUND: Remote resource does not exist
//   - NETWORK_ERROR, TIMEOUT: Transport failures
//   - DOWNLOAD_FAILED, FILESYSTEM: Materialization failures
//   - LOCKED: Another run holds the destination
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "unexpected root element %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // Handle malformed document
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDownload, origErr, "download %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidDocument   Code = "INVALID_DOCUMENT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Materialization errors
	ErrCodeDownload   Code = "DOWNLOAD_FAILED"
	ErrCodeFilesystem Code = "FILESYSTEM"
	ErrCodeCatalog    Code = "CATALOG"

	// Coordination errors
	ErrCodeLocked Code = "LOCKED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
