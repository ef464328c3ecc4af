package extractor

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrUnavailable is returned by Available when a provider's precondition is unmet.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrNoMatch lets a provider decline without counting as a failure; the chain moves on.
	ErrNoMatch = errors.New("no match")
	// ErrMalformedResponse means a model reply could not be salvaged into JSON.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrUnsupportedInput is returned when a provider is handed an input kind it cannot read.
	ErrUnsupportedInput = errors.New("unsupported input")
)

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Unavailable wraps a reason as ErrUnavailable.
func Unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// Truncate shortens s for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
