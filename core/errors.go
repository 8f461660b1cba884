package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a core error into the stable taxonomy surfaced to
// callers. Persistence-layer failures are wrapped as KindInternal and never
// leak driver detail in the message.
type ErrorKind string

// Predefined ErrorKind values
const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindInvalidOperation  ErrorKind = "INVALID_OPERATION"
	KindConflict          ErrorKind = "CONFLICT"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindInternal          ErrorKind = "INTERNAL"
)

// Error is the stable (kind, message) pair returned by every core operation
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds a KindInvalidTransition error
func InvalidTransition(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation builds a KindInvalidOperation error
func InvalidOperation(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a KindUnauthorized error
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an opaque persistence or infrastructure failure
func Internal(err error, message string) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to KindInternal for
// errors that did not originate in the core
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
