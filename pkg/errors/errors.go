// Package errors provides structured error types for plasmap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the layout core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - UNKNOWN_*: Values outside a closed set
//   - NOT_FOUND_*: Resource not found
//   - LAYOUT_*: Layout computation failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "missing sequence length in %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
//
// The typed errors [ValidationError], [UnknownFeatureTypeError] and
// [LayoutDivergedError] carry their own codes and are matched by [Is] and
// [GetCode] in the same way.
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSequence Code = "INVALID_SEQUENCE"
	ErrCodeInvalidSpan     Code = "INVALID_SPAN"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidOptions  Code = "INVALID_OPTIONS"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Closed-set errors
	ErrCodeUnknownFeatureType Code = "UNKNOWN_FEATURE_TYPE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Layout errors
	ErrCodeLayoutDiverged Code = "LAYOUT_DIVERGED"

	// Backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// coded is implemented by the typed errors in this package.
type coded interface {
	error
	ErrorCode() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a
// matching code. The outermost coded error wins.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no coded error is found in the chain.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.ErrorCode()
		}
		err = errors.Unwrap(err)
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

// ValidationError reports a numeric value outside its allowed range.
// Field is "length" for sequence lengths and "start", "end" or "cut" for
// feature positions.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int // 0 means unbounded
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("%s: %s must be >= %d, got %d", e.ErrorCode(), e.Field, e.Min, e.Value)
	}
	return fmt.Sprintf("%s: %s %d outside [%d, %d]", e.ErrorCode(), e.Field, e.Value, e.Min, e.Max)
}

// ErrorCode returns INVALID_SEQUENCE for lengths and INVALID_SPAN otherwise.
func (e *ValidationError) ErrorCode() Code {
	if e.Field == "length" {
		return ErrCodeInvalidSequence
	}
	return ErrCodeInvalidSpan
}

// UnknownFeatureTypeError reports a feature type outside the recognized set.
type UnknownFeatureTypeError struct {
	Type string
}

// Error implements the error interface.
func (e *UnknownFeatureTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrCodeUnknownFeatureType, e.Type)
}

// ErrorCode returns UNKNOWN_FEATURE_TYPE.
func (e *UnknownFeatureTypeError) ErrorCode() Code { return ErrCodeUnknownFeatureType }

// LayoutDivergedError is returned when ring assignment does not reach a
// conflict-free pass within the configured pass ceiling.
type LayoutDivergedError struct {
	Passes    int // passes executed
	Conflicts int // conflicts found in the last pass
}

// Error implements the error interface.
func (e *LayoutDivergedError) Error() string {
	return fmt.Sprintf("%s: %d conflicts left after %d passes", ErrCodeLayoutDiverged, e.Conflicts, e.Passes)
}

// ErrorCode returns LAYOUT_DIVERGED.
func (e *LayoutDivergedError) ErrorCode() Code { return ErrCodeLayoutDiverged }
