package api

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls how failed requests are retried.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier grows the delay after each attempt.
	Multiplier float64
	// Jitter is the randomization fraction (0.0 to 1.0) applied to each
	// delay so that a fleet of agents does not retry in lockstep.
	Jitter float64
	// RetryableOn reports whether a status code is worth retrying.
	// Permanent client errors must return false here; only transient
	// conditions are retried.
	RetryableOn func(statusCode int) bool
}

// defaultRetryable reports true for transient HTTP statuses.
func defaultRetryable(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// DefaultRetryConfig returns the retry defaults: 3 retries starting at
// 500ms, doubling per attempt with 20% jitter, capped at 15s.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
		RetryableOn: defaultRetryable,
	}
}

// Retryable reports whether statusCode is in the retryable set.
func (r *RetryConfig) Retryable(statusCode int) bool {
	if r.RetryableOn == nil {
		return defaultRetryable(statusCode)
	}
	return r.RetryableOn(statusCode)
}

// ShouldRetry reports whether a request that observed statusCode should be
// attempted again. attempt is zero-based.
func (r *RetryConfig) ShouldRetry(attempt int, statusCode int) bool {
	if attempt >= r.MaxRetries {
		return false
	}
	return r.Retryable(statusCode)
}

// Delay returns the backoff delay for the given zero-based attempt.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter > 0 {
		jitterAmount := delay * r.Jitter
		delay = delay - jitterAmount + (rand.Float64() * 2 * jitterAmount)
	}

	return time.Duration(delay)
}

// Wait sleeps for the attempt's backoff delay, returning early with the
// context error if ctx is cancelled.
func (r *RetryConfig) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
