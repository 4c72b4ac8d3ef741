package errs

import (
	"context"
	"time"
)

// BackoffConfig controls the exponential-backoff retry helper.
type BackoffConfig struct {
	InitialDelay time.Duration
	Factor       float64
	MaxDelay     time.Duration
	MaxAttempts  int
}

// DefaultBackoff matches spec.md §4.15/§7: initial 500ms, factor 2, cap
// 30s, 3 attempts.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 500 * time.Millisecond,
		Factor:       2,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  3,
	}
}

// Retry invokes fn up to cfg.MaxAttempts times, retrying only when the
// returned error is retryable (IsRetryable). It sleeps between attempts
// using exponential backoff capped at cfg.MaxDelay, and returns as soon as
// fn succeeds, the context is cancelled, or the error is not retryable.
func Retry(ctx context.Context, cfg BackoffConfig, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * cfg.Factor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}
