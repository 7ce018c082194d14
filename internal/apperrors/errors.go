// Package apperrors defines the closed set of failures the service reports.
// Every error crossing the HTTP boundary is classified by Kind.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
	KindInvalidArgument
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// Error is a classified error with a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind, so callers can write
// errors.Is(err, apperrors.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Validation(msg string, err error) *Error { return &Error{Kind: KindValidation, Message: msg, Err: err} }
func Conflict(msg string) *Error              { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) *Error          { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) *Error              { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidArgument(msg string) *Error       { return &Error{Kind: KindInvalidArgument, Message: msg} }

// StoreUnavailable reports that the backing store cannot be reached.
func StoreUnavailable() *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "Database not available - running in offline mode"}
}

// Internal wraps an unexpected failure. The message is never shown to callers.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message of a classified error.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
