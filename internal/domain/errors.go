package domain

import (
	"errors"
	"fmt"
)

// ValidationError rejects a request before fingerprinting or any model work.
// Never retried and never cached.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// TransientUpstreamError is a model-call failure worth retrying:
// timeouts, rate limiting, 5xx responses, network errors.
type TransientUpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransientUpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transient upstream error: %s", e.Message)
}

func (e *TransientUpstreamError) Unwrap() error {
	return e.Err
}

// FatalUpstreamError is a model rejection that retrying cannot fix:
// invalid input, auth failure, safety block. Surfaced immediately.
type FatalUpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FatalUpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream rejected request: %s", e.Message)
}

func (e *FatalUpstreamError) Unwrap() error {
	return e.Err
}

// TimeoutError marks an invocation that exceeded its end-to-end deadline.
// The reservation is released and nothing is cached.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return "model invocation timed out"
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransient reports whether err is worth retrying against the model.
func IsTransient(err error) bool {
	var t *TransientUpstreamError
	return errors.As(err, &t)
}

// IsFatalUpstream reports whether err is a non-retryable model rejection.
func IsFatalUpstream(err error) bool {
	var f *FatalUpstreamError
	return errors.As(err, &f)
}

// IsTimeout reports whether err is a deadline failure.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}
