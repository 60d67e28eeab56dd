package translate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrUnsupportedLanguage is returned for targets outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	// ErrUnavailable wraps every backend failure. Callers show a transient
	// message and do not retry.
	ErrUnavailable = errors.New("translation service unavailable")
)

// RateLimitError indicates the translation provider returned HTTP 429.
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

// TransientMessage turns a backend failure into a short message for users.
func TransientMessage(err error) string {
	var rl *RateLimitError
	switch {
	case errors.As(err, &rl):
		return fmt.Sprintf("The translation service is busy. Please try again in %d seconds.", int(rl.RetryAfter.Seconds()))
	case errors.Is(err, context.DeadlineExceeded):
		return "The translation service took too long to respond. Please try again."
	default:
		return "The translation service is currently unavailable. Please try again later."
	}
}
