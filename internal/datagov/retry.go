package datagov

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/samarthdata/samarth/internal/log"
)

// RetryConfig defines retry behavior for API calls.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// InitialInterval is the initial backoff duration.
	InitialInterval time.Duration

	// MaxInterval is the maximum backoff duration.
	MaxInterval time.Duration

	// Multiplier is the backoff multiplier.
	Multiplier float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

// retryableError checks if an error is worth retrying.
// Covers transient HTTP statuses and flaky-network failure modes.
func retryableError(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		switch se.code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	errStr := strings.ToLower(err.Error())
	return containsAny(errStr,
		"connection reset",
		"connection refused",
		"timeout",
		"temporary",
		"unavailable",
		"eof",
	)
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrs ...string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// executeWithRetry runs fn with rate limiting and exponential backoff.
// The limiter is awaited before every attempt so retries don't stampede.
func executeWithRetry(
	ctx context.Context,
	cfg RetryConfig,
	limiter *rate.Limiter,
	logger log.Logger,
	fn func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	var lastErr error
	interval := cfg.InitialInterval

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		body, err := fn(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryableError(err) || attempt == cfg.MaxRetries {
			break
		}

		logger.Warn("retrying request",
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"backoff", interval,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-time.After(interval):
		}

		interval = min(time.Duration(float64(interval)*cfg.Multiplier), cfg.MaxInterval)
	}

	return nil, lastErr
}
