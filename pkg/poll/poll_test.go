package poll

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	attempts int
	err      error
}

// runUntil starts Until on a fake clock and returns the clock plus the result channel
func runUntil(ctx context.Context, cfg Config, fn func(int) bool) (clockwork.FakeClock, <-chan result) {
	clock := clockwork.NewFakeClock()
	cfg.Clock = clock

	out := make(chan result, 1)
	go func() {
		n, err := Until(ctx, cfg, fn)
		out <- result{attempts: n, err: err}
	}()
	return clock, out
}

func TestUntilSucceedsOnFifthAttempt(t *testing.T) {
	var calls []int
	clock, out := runUntil(context.Background(), Config{Interval: 200 * time.Millisecond, MaxAttempts: 20}, func(attempt int) bool {
		calls = append(calls, attempt)
		return attempt == 5
	})
	start := clock.Now()

	for i := 0; i < 5; i++ {
		clock.BlockUntil(1)
		clock.Advance(200 * time.Millisecond)
	}

	res := <-out
	require.NoError(t, res.err)
	assert.Equal(t, 5, res.attempts)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
	assert.Equal(t, time.Second, clock.Since(start))
}

func TestUntilExhausts(t *testing.T) {
	calls := 0
	clock, out := runUntil(context.Background(), Config{Interval: 200 * time.Millisecond, MaxAttempts: 20}, func(int) bool {
		calls++
		return false
	})
	start := clock.Now()

	for i := 0; i < 20; i++ {
		clock.BlockUntil(1)
		clock.Advance(200 * time.Millisecond)
	}

	res := <-out
	assert.ErrorIs(t, res.err, ErrExhausted)
	assert.Equal(t, 20, res.attempts)
	assert.Equal(t, 20, calls)
	assert.Equal(t, 4*time.Second, clock.Since(start))

	// Nothing is left waiting on the clock once the bound is hit
	clock.Advance(time.Minute)
	assert.Equal(t, 20, calls)
}

func TestUntilFirstCheckWaitsOneInterval(t *testing.T) {
	calls := 0
	clock, out := runUntil(context.Background(), Config{Interval: 200 * time.Millisecond, MaxAttempts: 3}, func(int) bool {
		calls++
		return true
	})

	clock.BlockUntil(1)
	clock.Advance(199 * time.Millisecond)
	assert.Equal(t, 0, calls)

	clock.Advance(time.Millisecond)
	res := <-out
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.attempts)
	assert.Equal(t, 1, calls)
}

func TestUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	clock, out := runUntil(ctx, Config{Interval: time.Second, MaxAttempts: 10}, func(int) bool {
		calls++
		return false
	})

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	clock.BlockUntil(1)
	cancel()

	res := <-out
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.Equal(t, 1, res.attempts)
	assert.Equal(t, 1, calls)
}

func TestUntilInvalidConfig(t *testing.T) {
	_, err := Until(context.Background(), Config{Interval: 0, MaxAttempts: 1}, func(int) bool { return true })
	assert.Error(t, err)

	_, err = Until(context.Background(), Config{Interval: time.Second}, func(int) bool { return true })
	assert.Error(t, err)
}
