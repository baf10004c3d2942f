// Package retry runs an operation a bounded number of times with a backoff
// between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flixlist/internal/services"
)

// Policy bounds the attempts made by Do.
type Policy struct {
	// Attempts is the total number of calls, including the first. Values
	// below 1 mean a single attempt.
	Attempts int
	// Delay is the pause before the second attempt.
	Delay time.Duration
	// Exponential doubles Delay after each failed attempt, capped at MaxDelay.
	Exponential bool
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt. Nil means
	// everything except permanent upstream failures and context errors.
	Retryable func(error) bool
	// Sleep overrides how the pause is taken (useful for tests).
	Sleep func(context.Context, time.Duration) error
}

// Fixed returns a policy with a constant backoff.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay}
}

// Do calls fn until it succeeds, the policy is exhausted, or ctx ends.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	made := 0
	for made < attempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		made++
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if made == attempts || !p.retryable(err) {
			break
		}
		if err := p.sleep(ctx, p.delay(made)); err != nil {
			return zero, err
		}
	}
	if made == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", made, lastErr)
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return !services.IsPermanent(err)
}

func (p Policy) delay(attempt int) time.Duration {
	delay := p.Delay
	if delay <= 0 {
		return 0
	}
	if !p.Exponential {
		return delay
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return delay
}

func (p Policy) sleep(ctx context.Context, delay time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, delay)
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
