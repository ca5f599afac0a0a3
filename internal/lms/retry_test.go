package lms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoffStopsOnSuccess(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithBackoff(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffPermanentError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("not found")
	var calls int
	err := RetryWithBackoff(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return &permanentError{err: sentinel}
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithBackoff(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("still failing")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 5, time.Hour, func() error {
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
}
