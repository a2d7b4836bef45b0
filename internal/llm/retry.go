package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetryConfig defines retry behavior for Gemini calls.
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

// retryableError checks if an error is worth retrying. The Gemini SDK
// surfaces transport and quota problems as string-typed errors, so
// classification is by substring.
func retryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return containsAny(errStr,
		"rate limit",
		"quota",
		"429",
		"500",
		"502",
		"503",
		"504",
		"unavailable",
		"connection reset",
		"timeout",
		"temporary",
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

// executeWithRetry runs fn with the client's rate limiter and exponential
// backoff. The limiter is awaited before every attempt, including retries.
func (c *Client) executeWithRetry(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	interval := c.retry.InitialInterval

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryableError(err) || attempt == c.retry.MaxRetries {
			break
		}

		c.logger.Warn("retrying model call",
			"attempt", attempt+1,
			"max_retries", c.retry.MaxRetries,
			"backoff", interval,
			"error", err)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-time.After(interval):
		}

		interval = min(time.Duration(float64(interval)*c.retry.Multiplier), c.retry.MaxInterval)
	}

	return "", lastErr
}
