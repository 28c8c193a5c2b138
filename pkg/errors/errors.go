// Package errors provides structured error types for orientplace.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MISSING_*: Required input absent
//   - *_OUT_OF_RANGE: Values outside the accepted domain
//   - WORKER_* / INTERNAL_*: Unexpected failures during computation
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingOrientation, "missing orientations %v", missing)
//	if errors.Is(err, errors.ErrCodeMissingOrientation) {
//	    // Handle incomplete input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
//
// [Is] walks wrapped and joined errors, so a code is found even inside an
// aggregate produced by the standard library's errors.Join.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidGrid   Code = "INVALID_GRID"
	ErrCodeInvalidNet    Code = "INVALID_NET"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Incomplete or out-of-domain input
	ErrCodeMissingOrientation   Code = "MISSING_ORIENTATION"
	ErrCodeCoordinateOutOfRange Code = "COORDINATE_OUT_OF_RANGE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Computation errors
	ErrCodeWorkerFailure Code = "WORKER_FAILURE"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
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

// Is lets the standard library's errors.Is match an *Error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(codeTarget)
	return ok && Code(t) == e.Code
}

// codeTarget adapts a Code into an error value usable as an errors.Is target.
type codeTarget Code

func (c codeTarget) Error() string { return string(c) }

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

// Is reports whether err, or any error it wraps or joins, has the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, codeTarget(code))
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
// For joined errors the code of the first *Error in the tree is returned.
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
		return e.Message
	}
	return err.Error()
}
