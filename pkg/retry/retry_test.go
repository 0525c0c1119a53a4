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

func fast(attempts int) Policy {
	return Policy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	calls := 0
	err := fast(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPlainError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustedReturnsUnmarkedLastError(t *testing.T) {
	flaky := errors.New("still down")
	var retried []int
	p := fast(3)
	p.OnRetry = func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	}

	err := p.Do(context.Background(), func(context.Context) error {
		return Retryable(flaky)
	})

	assert.Equal(t, flaky, err)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_WrappedMarkIsRetried(t *testing.T) {
	calls := 0
	err := fast(2).Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("query: %w", Retryable(errors.New("503")))
	})

	assert.Equal(t, 2, calls)
	assert.EqualError(t, err, "query: 503")
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errors.New("x"))
	})
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := DoValue(context.Background(), fast(3), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "partial", Retryable(errors.New("once"))
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fast(3).Do(ctx, func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDelay_Capped(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, p.delay(1))
	assert.Equal(t, 2*time.Second, p.delay(2))
	assert.Equal(t, 3*time.Second, p.delay(5))
}

func TestCatalogPolicy(t *testing.T) {
	p := CatalogPolicy(4, 0, nil)
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, p.InitialDelay)

	p = CatalogPolicy(2, 10*time.Millisecond, nil)
	assert.Equal(t, 10*time.Millisecond, p.InitialDelay)
}
