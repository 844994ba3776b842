package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStart_InvalidExpression(t *testing.T) {
	s := New(context.Background(), func(context.Context) {}, time.UTC, discardLogger())
	t.Cleanup(func() { s.Stop() })

	err := s.Start("not a cron expression")
	assert.ErrorContains(t, err, "invalid cron expression")
}

func TestForceRun_RunsTick(t *testing.T) {
	var ticks atomic.Int32
	s := New(context.Background(), func(context.Context) {
		ticks.Add(1)
	}, time.UTC, discardLogger())
	t.Cleanup(func() { s.Stop() })

	s.ForceRun()
	s.ForceRun()
	assert.Equal(t, int32(2), ticks.Load())
}

func TestForceRun_SkipsWhileTickInFlight(t *testing.T) {
	var ticks atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s := New(context.Background(), func(context.Context) {
		ticks.Add(1)
		close(started)
		<-release
	}, time.UTC, discardLogger())
	t.Cleanup(func() { s.Stop() })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.ForceRun()
	}()

	<-started
	// A second run while the first is in flight must be a no-op.
	s.ForceRun()
	assert.Equal(t, int32(1), ticks.Load())

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), ticks.Load())
}

func TestStart_ScheduledTrigger(t *testing.T) {
	var ticks atomic.Int32
	s := New(context.Background(), func(context.Context) {
		ticks.Add(1)
	}, time.UTC, discardLogger())
	t.Cleanup(func() { s.Stop() })

	require.NoError(t, s.Start("@every 20ms"))

	assert.Eventually(t, func() bool {
		return ticks.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStart_ReplacesPreviousTrigger(t *testing.T) {
	var ticks atomic.Int32
	s := New(context.Background(), func(context.Context) {
		ticks.Add(1)
	}, time.UTC, discardLogger())
	t.Cleanup(func() { s.Stop() })

	require.NoError(t, s.Start("@every 20ms"))
	assert.Eventually(t, func() bool {
		return ticks.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	// Replace with a trigger that will not fire within the test.
	require.NoError(t, s.Start("@every 1h"))
	time.Sleep(50 * time.Millisecond) // let any in-flight tick settle
	before := ticks.Load()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, ticks.Load(), "replaced trigger must not keep firing")
}
