package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) { slept = append(slept, d) }

	calls := 0
	out := Retry(context.Background(), 3, 2*time.Second, sleep, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, calls)
	assert.NoError(t, out.LastErr)
	assert.Empty(t, slept, "no sleep after a successful attempt")
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) { slept = append(slept, d) }

	calls := 0
	out := Retry(context.Background(), 3, 2*time.Second, sleep, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) { slept = append(slept, d) }

	wantErr := errors.New("endpoint down")
	calls := 0
	out := Retry(context.Background(), 3, 2*time.Second, sleep, func(ctx context.Context) error {
		calls++
		return wantErr
	})

	assert.False(t, out.Success)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, out.LastErr, wantErr)
	// Sleeps happen between attempts only, never after the last one.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, slept)
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	out := Retry(ctx, 5, time.Second, func(context.Context, time.Duration) {}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	require.False(t, out.Success)
	assert.Equal(t, 1, calls)
}

func TestRetryMinimumOneAttempt(t *testing.T) {
	calls := 0
	out := Retry(context.Background(), 0, 0, func(context.Context, time.Duration) {}, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.True(t, out.Success)
	assert.Equal(t, 1, calls)
}
