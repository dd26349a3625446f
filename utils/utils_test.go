package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotTracker(t *testing.T) {
	tr := NewLotTracker()

	assert.True(t, tr.Add("https://x.test/lot/1"))
	assert.False(t, tr.Add("https://x.test/lot/1"))
	assert.True(t, tr.Add("https://x.test/lot/2"))
	assert.Equal(t, 2, tr.Count())
}

func TestRetrySucceedsWithoutDelayOnFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, func() error {
		calls++
		return nil
	}, NewLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	sentinel := errors.New("still broken")
	err := RetryWithBackoff(context.Background(), 1, func() error {
		return sentinel
	}, NewLogger())

	require.ErrorIs(t, err, sentinel)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, 3, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, NewLogger())

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
