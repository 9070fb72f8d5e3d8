package trigger

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrQueueFull        = errors.New("handoff queue full")
)

// ParseError marks a malformed payload from a registered provider. It is
// logged at error level since it points at a provider contract change rather
// than attacker activity.
type ParseError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s payload: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s payload: %s", e.Platform, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func NewParseError(platform, reason string, err error) *ParseError {
	return &ParseError{Platform: platform, Reason: reason, Err: err}
}

// HTTPStatusError reports a non-2xx response from a provider API call.
// RetryAfter carries the provider's Retry-After hint on 429, zero otherwise.
type HTTPStatusError struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("provider returned %d", e.Status)
}
