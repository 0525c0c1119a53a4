// Package retry repeats an operation with capped exponential backoff while
// it keeps failing with errors marked Retryable.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// retryableError marks an error worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err, or anything it wraps, is marked
// Retryable.
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}

// Policy bounds the attempts of one operation.
type Policy struct {
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int

	// InitialDelay doubles after each failure, up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Jitter spreads each delay by up to +/- this fraction.
	Jitter float64

	// OnRetry, when set, runs before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// CatalogPolicy is the policy for remote catalog queries. A non-positive
// initialDelay selects 250ms.
func CatalogPolicy(maxAttempts int, initialDelay time.Duration, onRetry func(int, error, time.Duration)) Policy {
	if initialDelay <= 0 {
		initialDelay = 250 * time.Millisecond
	}
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		MaxDelay:     5 * time.Second,
		Jitter:       0.2,
		OnRetry:      onRetry,
	}
}

// Do runs op until it succeeds, fails with an error that is not Retryable,
// runs out of attempts, or ctx ends. A top-level Retryable mark is removed
// from the returned error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = unmark(err)
		if !IsRetryable(err) || attempt == attempts {
			return lastErr
		}

		delay := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.InitialDelay << (attempt - 1)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(float64(d) * p.Jitter * (rand.Float64()*2 - 1))
	}
	return max(d, 0)
}

func unmark(err error) error {
	var r *retryableError
	if errors.As(err, &r) && err == error(r) {
		return r.err
	}
	return err
}
