package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleeper records requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *recordingSleeper) total() time.Duration {
	var sum time.Duration
	for _, d := range s.delays {
		sum += d
	}
	return sum
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 0},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{5, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestPolicyAttemptsNormalized(t *testing.T) {
	assert.Equal(t, 1, Policy{MaxAttempts: 0}.Attempts())
	assert.Equal(t, 1, Policy{MaxAttempts: -4}.Attempts())
	assert.Equal(t, 3, DefaultPolicy().Attempts())
}

func TestPolicyWorstCaseDelay(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Second}
	// 2s + 3s + 4s
	assert.Equal(t, 9*time.Second, p.WorstCaseDelay())
	assert.Equal(t, time.Duration(0), Policy{MaxAttempts: 1, BaseDelay: time.Second}.WorstCaseDelay())
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	base := 10 * time.Millisecond

	for k := 0; k < 3; k++ {
		t.Run(fmt.Sprintf("fail_%d_times", k), func(t *testing.T) {
			sleeper := &recordingSleeper{}
			r := Runner{Policy: Policy{MaxAttempts: 3, BaseDelay: base}, Sleeper: sleeper}

			calls := 0
			got, err := DoWithResult(context.Background(), r, func() (string, error) {
				calls++
				if calls <= k {
					return "", errors.New("locked")
				}
				return "ok", nil
			})

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, k+1, calls)

			// sum of base*i for i in 2..k+1
			var want time.Duration
			for i := 2; i <= k+1; i++ {
				want += base * time.Duration(i)
			}
			assert.Equal(t, want, sleeper.total())
			assert.Len(t, sleeper.delays, k)
		})
	}
}

func TestDoReturnsLastErrorVerbatim(t *testing.T) {
	sleeper := &recordingSleeper{}
	r := Runner{Policy: Policy{MaxAttempts: 3, BaseDelay: time.Second}, Sleeper: sleeper}

	var failures []int
	r.OnFailure = func(attempt int, err error) {
		failures = append(failures, attempt)
	}

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("attempt %d failed", calls)
	})

	require.Error(t, err)
	assert.Equal(t, "attempt 3 failed", err.Error())
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2, 3}, failures)
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, sleeper.delays)
}

func TestDoSingleAttemptNeverSleeps(t *testing.T) {
	sleeper := &recordingSleeper{}
	r := Runner{Policy: Policy{MaxAttempts: 1, BaseDelay: time.Second}, Sleeper: sleeper}

	sentinel := errors.New("boom")
	err := r.Do(context.Background(), func() error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.Empty(t, sleeper.delays)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(Policy{MaxAttempts: 5, BaseDelay: time.Hour})

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, func() error {
			calls++
			return errors.New("still locked")
		})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestTimerSleeperWaits(t *testing.T) {
	start := time.Now()
	err := TimerSleeper{}.Sleep(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
