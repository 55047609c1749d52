package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestPollFiresOncePerHour(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 10, 14, 20, 0, 0, 0, time.UTC)}
	s := NewHourly(context.Background(), 15, time.Second, NewMemoryMarker())
	s.nowFn = clock.Now

	fires := map[time.Time]int{}
	task := func(context.Context) { fires[HourKey(clock.Now())]++ }

	// Every second across three hours.
	for i := 0; i < 3*3600; i++ {
		s.Poll(task)
		clock.Advance(time.Second)
	}
	require.Len(t, fires, 3)
	for hour, n := range fires {
		assert.Equal(t, 1, n, "hour %s", hour)
	}
}

func TestPollIgnoresOtherMinutes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 10, 14, 20, 14, 59, 0, time.UTC)}
	s := NewHourly(context.Background(), 15, time.Second, nil)
	s.nowFn = clock.Now
	ran := 0
	assert.False(t, s.Poll(func(context.Context) { ran++ }))
	clock.Advance(time.Second)
	assert.True(t, s.Poll(func(context.Context) { ran++ }))
	clock.Advance(59 * time.Second)
	assert.False(t, s.Poll(func(context.Context) { ran++ }))
	assert.Equal(t, 1, ran)
}

type failingMarker struct{ markErr error }

func (f failingMarker) Fired(time.Time) (bool, error) { return false, nil }
func (f failingMarker) Mark(time.Time) error          { return f.markErr }

func TestMarkerIsSetBeforeTask(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 10, 14, 20, 15, 3, 0, time.UTC)}
	marker := NewMemoryMarker()
	s := NewHourly(context.Background(), 15, time.Second, marker)
	s.nowFn = clock.Now

	var seen bool
	s.Poll(func(context.Context) {
		seen, _ = marker.Fired(clock.Now())
	})
	assert.True(t, seen)

	s.Marker = failingMarker{markErr: errors.New("disk full")}
	assert.False(t, s.Poll(func(context.Context) { t.Fatal("must not run when the marker cannot be set") }))
}

func TestPanickingTaskDoesNotStopScheduler(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 10, 14, 20, 15, 0, 0, time.UTC)}
	s := NewHourly(context.Background(), 15, time.Second, nil)
	s.nowFn = clock.Now

	assert.True(t, s.Poll(func(context.Context) { panic("boom") }))
	clock.Advance(time.Hour)
	ran := false
	assert.True(t, s.Poll(func(context.Context) { ran = true }))
	assert.True(t, ran)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := &fakeClock{now: time.Date(2025, 10, 14, 20, 15, 0, 0, time.UTC)}
	ticks := make(chan time.Time)
	s := NewHourly(ctx, 15, 15*time.Second, nil)
	s.nowFn = clock.Now
	s.tickFn = func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }

	var (
		mu     sync.Mutex
		states []HourlyState
		runs   int
	)
	s.onState = func(st HourlyState) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	}
	done := make(chan struct{})
	go func() {
		s.Start(func(context.Context) {
			mu.Lock()
			runs++
			mu.Unlock()
		})
		close(done)
	}()

	ticks <- clock.Now()
	clock.Advance(time.Hour)
	ticks <- clock.Now()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, runs)
	assert.Equal(t, StateIdle, states[0])
	assert.Contains(t, states, StateTriggered)
}

func TestNextTrigger(t *testing.T) {
	s := NewHourly(context.Background(), 15, 15*time.Second, nil)
	base := time.Date(2025, 10, 14, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(15*time.Minute), s.NextTrigger(base.Add(3*time.Minute)))
	assert.Equal(t, base.Add(15*time.Minute), s.NextTrigger(base.Add(15*time.Minute+30*time.Second)))
	assert.Equal(t, base.Add(75*time.Minute), s.NextTrigger(base.Add(16*time.Minute)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewHourly(context.Background(), 15, 15*time.Second, nil).Validate())
	assert.Error(t, NewHourly(context.Background(), 60, 15*time.Second, nil).Validate())
	assert.Error(t, NewHourly(context.Background(), 15, time.Minute, nil).Validate())
}
