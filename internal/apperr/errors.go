// Package apperr defines the error taxonomy shared by the services and the
// HTTP boundary. Services return *Error values carrying a Kind and a human
// readable message; only the boundary decides which status code a kind maps
// to.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindAvailability     Kind = "AVAILABILITY"
	KindStatus           Kind = "STATUS"
	KindAccessDenied     Kind = "ACCESS_DENIED"
	KindUnsupportedState Kind = "UNSUPPORTED_STATE"
	KindComment          Kind = "COMMENT"
	KindValidation       Kind = "VALIDATION"
	KindConflict         Kind = "CONFLICT"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindInternal         Kind = "INTERNAL"
)

// Error is a categorized application error.
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

func Availability(format string, args ...any) *Error {
	return newf(KindAvailability, format, args...)
}

func Status(format string, args ...any) *Error { return newf(KindStatus, format, args...) }

func AccessDenied(format string, args ...any) *Error {
	return newf(KindAccessDenied, format, args...)
}

func UnsupportedState(state string) *Error {
	return newf(KindUnsupportedState, "Unknown state: %s", state)
}

func Comment(format string, args ...any) *Error { return newf(KindComment, format, args...) }

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

func Unauthorized(format string, args ...any) *Error {
	return newf(KindUnauthorized, format, args...)
}

// Internal wraps an unexpected failure, typically from storage.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindInternal for uncategorized errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client facing message of err. Uncategorized errors
// never leak their text.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal error"
}
