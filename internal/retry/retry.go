// Package retry runs an operation a bounded number of times with a linear
// backoff between attempts.
package retry

import (
	"context"
	"time"
)

// Policy holds retry configuration.
type Policy struct {
	MaxAttempts int           // Total attempts including the first one (values < 1 mean 1)
	BaseDelay   time.Duration // Delay unit; attempt i waits BaseDelay*i before running
}

// DefaultPolicy returns the stock policy: 3 attempts, 1s base delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Attempts returns the effective number of attempts.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait before the given 1-indexed attempt.
// The first attempt never waits.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 || p.BaseDelay <= 0 {
		return 0
	}
	return p.BaseDelay * time.Duration(attempt)
}

// WorstCaseDelay is the total time spent sleeping when every attempt fails.
// It grows quadratically with MaxAttempts; there is no overall cap.
func (p Policy) WorstCaseDelay() time.Duration {
	var total time.Duration
	for i := 2; i <= p.Attempts(); i++ {
		total += p.Delay(i)
	}
	return total
}

// Sleeper pauses between attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a timer and returns early if ctx is cancelled.
type TimerSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Runner binds a Policy to a Sleeper and an optional failure hook.
type Runner struct {
	Policy  Policy
	Sleeper Sleeper

	// OnFailure is called after every failed attempt, including the last.
	OnFailure func(attempt int, err error)
}

// NewRunner returns a Runner that sleeps on real timers.
func NewRunner(p Policy) Runner {
	return Runner{Policy: p, Sleeper: TimerSleeper{}}
}

// Do executes fn until it succeeds or the attempts are exhausted.
// The error from the final attempt is returned unchanged.
func (r Runner) Do(ctx context.Context, fn func() error) error {
	_, err := DoWithResult(ctx, r, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult executes fn with retries and returns its result.
func DoWithResult[T any](ctx context.Context, r Runner, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	sleeper := r.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	attempts := r.Policy.Attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleeper.Sleep(ctx, r.Policy.Delay(attempt)); err != nil {
				return zero, err
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if r.OnFailure != nil {
			r.OnFailure(attempt, err)
		}
	}

	return zero, lastErr
}
