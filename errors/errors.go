// Package errors provides the typed error taxonomy shared by every
// code-simplify package. Each error carries a stable numeric code and a
// message, and renders as "<code>: <message>".
package errors

import (
	"errors"
	"fmt"
)

// Fixed numeric codes surfaced to callers.
const (
	CodeInternal       = 500
	CodeRequestTimeout = 408
	CodeBadRequest     = 400
	CodeSSEHandler     = 500
)

// Error is the unified library error type.
type Error struct {
	// Code is the stable numeric error code.
	Code int
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error renders the error as "<code>: <message>".
func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Internal creates a generic wrapped failure (code 500).
func Internal(message string) *Error {
	return &Error{Code: CodeInternal, Message: message}
}

// Internalf creates an Internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// RequestTimeout creates a connect/read deadline error (code 408).
func RequestTimeout(message string) *Error {
	return &Error{Code: CodeRequestTimeout, Message: message}
}

// BadRequest creates a caller-input error (code 400).
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

// BadRequestf creates a BadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// SSEHandler creates a stream-dispatch error with the default code 500.
func SSEHandler(message string) *Error {
	return &Error{Code: CodeSSEHandler, Message: message}
}

// SSEHandlerWithCode creates a stream-dispatch error with a custom code.
func SSEHandlerWithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// OtherInternal creates an error with a caller-specified code. It is the
// generic escape hatch for codes outside the fixed taxonomy.
func OtherInternal(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf returns the numeric code of err, or 0 when err is not a library
// error.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsInternal reports whether err is an Internal-class error.
func IsInternal(err error) bool {
	return CodeOf(err) == CodeInternal
}

// IsRequestTimeout reports whether err is a RequestTimeout-class error.
func IsRequestTimeout(err error) bool {
	return CodeOf(err) == CodeRequestTimeout
}

// IsBadRequest reports whether err is a BadRequest-class error.
func IsBadRequest(err error) bool {
	return CodeOf(err) == CodeBadRequest
}
