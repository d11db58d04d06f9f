// Package apperr defines the closed error-kind taxonomy shared by every
// AavionDB component, per spec.md §7. Components return *Error instead
// of panicking or returning ad hoc error strings; the command registry
// and HTTP adapter both type-switch on it to build their respective
// response shapes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds from spec.md §7.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindAuth            Kind = "auth"
	KindRateLimited     Kind = "rate_limited"
	KindLockedDown      Kind = "locked_down"
	KindStorage         Kind = "storage"
	KindInternal        Kind = "internal"
)

// defaultStatus maps a Kind to the HTTP status spec.md §7/§6 assigns it
// when no more specific status was supplied at the call site.
var defaultStatus = map[Kind]int{
	KindInvalidArgument: http.StatusBadRequest,
	KindNotFound:        http.StatusBadRequest,
	KindConflict:        http.StatusBadRequest,
	KindAuth:            http.StatusUnauthorized,
	KindRateLimited:     http.StatusTooManyRequests,
	KindLockedDown:      http.StatusServiceUnavailable,
	KindStorage:         http.StatusInternalServerError,
	KindInternal:        http.StatusInternalServerError,
}

// Error is the error type every AavionDB component returns.
type Error struct {
	Kind       Kind
	Reason     string // machine-readable, e.g. "bootstrap_forbidden"
	Message    string // human-readable
	HTTPStatus int
	RetryAfter int // seconds; 0 means absent
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind with the default HTTP status.
func New(kind Kind, reason, message string) *Error {
	return &Error{
		Kind:       kind,
		Reason:     reason,
		Message:    message,
		HTTPStatus: defaultStatus[kind],
	}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(kind Kind, reason, message string, cause error) *Error {
	e := New(kind, reason, message)
	e.Cause = cause
	return e
}

// WithStatus overrides the HTTP status code (used for 401/403/429/503
// distinctions within a single Kind, per spec.md §6).
func (e *Error) WithStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryAfter sets a Retry-After hint in seconds.
func (e *Error) WithRetryAfter(seconds int) *Error {
	e.RetryAfter = seconds
	return e
}

// NotFound is a convenience constructor for the frequent not_found case.
func NotFound(reason, message string) *Error {
	return New(KindNotFound, reason, message)
}

// InvalidArgument is a convenience constructor for malformed input.
func InvalidArgument(reason, message string) *Error {
	return New(KindInvalidArgument, reason, message)
}

// As extracts an *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
