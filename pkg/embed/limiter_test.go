package embed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterBurst(t *testing.T) {
	limiter, stop, err := NewLimiter(1, 3)
	require.NoError(t, err)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
}

func TestLimiterBlocksWhenDrained(t *testing.T) {
	limiter, stop, err := NewLimiter(0.1, 1)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiterRejectsZeroRate(t *testing.T) {
	_, _, err := NewLimiter(0, 1)
	require.Error(t, err)
}
