package latency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStaysInRange(t *testing.T) {
	t.Parallel()

	s := New(300*time.Millisecond, 800*time.Millisecond)
	for range 200 {
		d := s.next()
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.LessOrEqual(t, d, 800*time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, New(50*time.Millisecond, 10*time.Millisecond).next())
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("none returns immediately", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, None().Wait(context.Background()))
	})

	t.Run("nil simulator", func(t *testing.T) {
		t.Parallel()
		var s *Simulator
		require.NoError(t, s.Wait(context.Background()))
	})

	t.Run("fixed delay elapses", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		require.NoError(t, Fixed(20*time.Millisecond).Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("cancellation wins", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := Fixed(time.Hour).Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context with no delay", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, None().Wait(ctx), context.Canceled)
	})
}
