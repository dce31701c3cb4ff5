// Package domainerrors provides coded errors for expected, user-facing
// outcomes. Services attach a Code to every error they return; the HTTP layer
// maps codes to statuses without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and branching.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeConflict           Code = "conflict"
	CodeValidation         Code = "validation_failed"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
)

// Error carries a classification code alongside the message. The wrapped
// cause, when present, is reachable through errors.Unwrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two coded errors by code and message, so tests can
// compare against a freshly constructed expectation.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// New builds a coded error with a static message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias of Is kept for call-site readability in conditionals.
func HasCode(err error, code Code) bool { return Is(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that never passed through this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
