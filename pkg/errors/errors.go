// Package errors provides structured error types for springlayout.
//
// Every error that crosses a package boundary carries a machine-readable
// [Code]. This lets the CLI and the HTTP viewer tell apart:
//   - caller mistakes (INVALID_ARGUMENT, for example a shortest-path query
//     between identical vertices);
//   - broken structural invariants (INVARIANT_VIOLATION, for example a
//     path that would visit a vertex twice);
//   - lookups of unknown strategies, parameters or vertices (NOT_FOUND).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "start and end are the same vertex")
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle caller error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidPreset, origErr, "read preset %s", path)
//
// Sentinel values declared with [New] work with the standard library too:
//
//	var ErrSameEndpoints = errors.New(errors.ErrCodeInvalidArgument, "start equals end")
//	stderrors.Is(err, ErrSameEndpoints)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Caller errors
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPreset   Code = "INVALID_PRESET"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Structural invariants of graphs and paths
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.Cause
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
		return e.Message
	}
	return err.Error()
}

// Invariant builds an INVARIANT_VIOLATION error. Path and graph operations
// return it instead of panicking so the orchestrator can log it and skip
// the mutation.
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeInvariantViolation, format, args...)
}
