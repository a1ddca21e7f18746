package core

import (
	"errors"
	"fmt"
	"time"
)

// The error types below classify every failure an external call can produce.
// The retry executor and the state machine dispatch on them: transient
// failures are retried, auth and not-found failures surface immediately, and
// the caller decides whether a surfaced failure is fatal or just degrades the
// run.

// TransientError marks a failure worth retrying: network trouble, timeouts,
// rate limiting. RetryAfter carries the server's reset hint when one was
// provided, zero otherwise.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// AuthError marks a credential or permission failure. Never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth failure: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError marks a missing remote entity. Never retried; the caller
// decides whether that is fatal or a degradation.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %v", e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

// ValidationError marks malformed input, caught before any external call is
// made.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation: %v", e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// GenerationError marks model output that could not be turned into a usable
// result.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failure: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// Transientf builds a TransientError from a format string.
func Transientf(format string, args ...any) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

// Transient wraps err as retryable.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// RateLimited wraps err as retryable and records the server's reset hint so
// the retry executor can wait at least that long before the next attempt.
func RateLimited(err error, resetIn time.Duration) error {
	return &TransientError{Err: err, RetryAfter: resetIn}
}

// Authf builds an AuthError from a format string.
func Authf(format string, args ...any) error {
	return &AuthError{Err: fmt.Errorf(format, args...)}
}

// NotFoundf builds a NotFoundError from a format string.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Err: fmt.Errorf(format, args...)}
}

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// Generationf builds a GenerationError from a format string.
func Generationf(format string, args ...any) error {
	return &GenerationError{Err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsAuth reports whether err is a credential or permission failure.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsNotFound reports whether err marks a missing remote entity.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsValidation reports whether err marks malformed input.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsGeneration reports whether err marks unusable model output.
func IsGeneration(err error) bool {
	var g *GenerationError
	return errors.As(err, &g)
}

// RetryAfterHint extracts a rate-limit reset hint from err, if any attempt in
// the wrap chain carried one.
func RetryAfterHint(err error) (time.Duration, bool) {
	var t *TransientError
	if errors.As(err, &t) && t.RetryAfter > 0 {
		return t.RetryAfter, true
	}
	return 0, false
}
