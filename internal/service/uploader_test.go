package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thegymcollege/reelflow/internal/models"
)

func testPoller() (*poller, *int) {
	slept := 0
	p := newPoller(models.PlatformInstagram)
	p.sleep = func(time.Duration) { slept++ }
	return p, &slept
}

func TestPollerWait_ReadyAfterPending(t *testing.T) {
	p, slept := testPoller()

	attempts := 0
	err := p.wait(context.Background(), func(ctx context.Context) (pollState, string, error) {
		attempts++
		if attempts < 3 {
			return pollPending, "", nil
		}
		return pollReady, "", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, *slept)
}

func TestPollerWait_FailureIsProtocolError(t *testing.T) {
	p, _ := testPoller()

	err := p.wait(context.Background(), func(ctx context.Context) (pollState, string, error) {
		return pollFailed, "media rejected", nil
	})

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, models.PlatformInstagram, protoErr.Platform)
	assert.Equal(t, "processing", protoErr.Step)
	assert.Contains(t, protoErr.Error(), "media rejected")
}

func TestPollerWait_ExhaustionIsTimeout(t *testing.T) {
	p, slept := testPoller()

	err := p.wait(context.Background(), func(ctx context.Context) (pollState, string, error) {
		return pollPending, "", nil
	})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, time.Duration(p.maxAttempts)*p.interval, timeoutErr.Waited)
	assert.Equal(t, p.maxAttempts-1, *slept)
}

func TestPollerWait_ContextCancellation(t *testing.T) {
	p, _ := testPoller()

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := p.wait(ctx, func(ctx context.Context) (pollState, string, error) {
		attempts++
		cancel()
		return pollPending, "", nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
