package provider

import (
	"errors"
	"fmt"
)

// RateLimitError reports that the provider refused the request because the
// caller exceeded its request quota.
type RateLimitError struct {
	Provider string
	Note     string
}

func (e *RateLimitError) Error() string {
	if e.Note == "" {
		return fmt.Sprintf("%s: rate limited", e.Provider)
	}
	return fmt.Sprintf("%s: rate limited: %s", e.Provider, e.Note)
}

// BadResponseError reports a non-2xx HTTP status.
type BadResponseError struct {
	StatusCode int
	Body       string
}

func (e *BadResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// TransportError reports that the HTTP request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("performing request: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a successful, non-rate-limited body that
// lacks the fields the normalizer requires.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err, or any error it wraps, is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
