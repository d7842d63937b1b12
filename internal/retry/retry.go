// Package retry provides a bounded, fixed-delay retry policy used for lock
// acquisition and for the commit step of a unit of work.
package retry

import (
	"context"
	"time"
)

// Policy bounds how often and how quickly an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// Do runs fn up to MaxAttempts times, sleeping Delay between attempts. The
// error from the last failed attempt is returned unchanged. A MaxAttempts
// below 1 is treated as a single attempt.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	return DoIf(ctx, policy, fn, func(error) bool { return true })
}

// DoIf is Do with a predicate: a failed attempt is only retried while
// shouldRetry(err) holds, so terminal errors surface immediately.
func DoIf(ctx context.Context, policy Policy, fn func(ctx context.Context) error, shouldRetry func(error) bool) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !shouldRetry(err) || attempt == attempts {
			return err
		}

		if sleepErr := sleep(ctx, policy.Delay); sleepErr != nil {
			return err
		}
	}

	return err
}

// sleep pauses for the given duration but respects context cancellation.
func sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
