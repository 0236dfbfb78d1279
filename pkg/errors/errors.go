package errors

import (
	"errors"
	"fmt"
)

// Error codes used across the engine and history packages.
const (
	CodeInvalidDomainInput = "INVALID_DOMAIN_INPUT"
	CodeNoPreviousSnapshot = "NO_PREVIOUS_SNAPSHOT"
	CodeNoNextSnapshot     = "NO_NEXT_SNAPSHOT"
	CodeSnapshotNotFound   = "SNAPSHOT_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error represents a typed domain error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so wrapped instances compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidDomainInput = New(CodeInvalidDomainInput, "invalid domain input")
	ErrNoPreviousSnapshot = New(CodeNoPreviousSnapshot, "no previous snapshot")
	ErrNoNextSnapshot     = New(CodeNoNextSnapshot, "no next snapshot")
	ErrSnapshotNotFound   = New(CodeSnapshotNotFound, "snapshot not found")
	ErrInternal           = New(CodeInternal, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}
