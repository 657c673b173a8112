package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConcurrentVisitTracker(t *testing.T) {
	tracker := newConcurrentVisitTracker()
	require.True(t, tracker.MarkIfNew("https://docs.example.com/first"))
	require.False(t, tracker.MarkIfNew("https://docs.example.com/first"))
	require.True(t, tracker.MarkIfNew("https://docs.example.com/second"))
	require.False(t, tracker.MarkIfNew(""), "empty URLs are never new")
}

func TestTimerPauseControllerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pauser := &timerPauseController{}
	start := time.Now()
	pauser.Pause(ctx, 5*time.Second)
	require.Less(t, time.Since(start), time.Second, "pause should exit immediately when context is done")
}

func TestTimerPauseControllerZeroDelay(t *testing.T) {
	pauser := &timerPauseController{}
	start := time.Now()
	pauser.Pause(context.Background(), 0)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRandomJitterBounds(t *testing.T) {
	require.Equal(t, time.Duration(0), randomJitter(0))
	require.Equal(t, time.Duration(0), randomJitter(-time.Second))

	limit := 250 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := randomJitter(limit)
		require.GreaterOrEqual(t, got, time.Duration(0))
		require.Less(t, got, limit)
	}
}
