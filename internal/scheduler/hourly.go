// Package scheduler triggers one cycle per settlement hour at a fixed
// minute-of-hour by polling the wall clock.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"strikebot/internal/logger"
)

// HourlyState is the scheduler's lifecycle state.
type HourlyState string

const (
	StateIdle      HourlyState = "idle"
	StateWaiting   HourlyState = "waiting"
	StateTriggered HourlyState = "triggered"
)

// Hourly fires task when the wall clock minute equals TriggerMinute and the
// marker has not fired for the current hour.
type Hourly struct {
	Name          string
	TriggerMinute int
	PollInterval  time.Duration
	Marker        FireMarker

	ctx     context.Context
	nowFn   func() time.Time
	tickFn  func(time.Duration) (<-chan time.Time, func())
	onState func(HourlyState)
}

func NewHourly(ctx context.Context, triggerMinute int, poll time.Duration, marker FireMarker) *Hourly {
	if ctx == nil {
		ctx = context.Background()
	}
	if marker == nil {
		marker = NewMemoryMarker()
	}
	return &Hourly{
		TriggerMinute: triggerMinute,
		PollInterval:  poll,
		Marker:        marker,
		ctx:           ctx,
		nowFn:         time.Now,
		tickFn:        newTicker,
	}
}

// Validate checks the trigger minute and that polling is finer than a minute.
func (s *Hourly) Validate() error {
	if s.TriggerMinute < 0 || s.TriggerMinute > 59 {
		return fmt.Errorf("trigger minute %d out of range [0,59]", s.TriggerMinute)
	}
	if s.PollInterval < time.Second || s.PollInterval >= time.Minute {
		return fmt.Errorf("poll interval %s must be within [1s,1m)", s.PollInterval)
	}
	return nil
}

// NextTrigger is the next occurrence of TriggerMinute at or after now,
// truncated to the minute.
func (s *Hourly) NextTrigger(now time.Time) time.Time {
	now = now.UTC()
	at := now.Truncate(time.Hour).Add(time.Duration(s.TriggerMinute) * time.Minute)
	if now.Sub(at) >= time.Minute {
		at = at.Add(time.Hour)
	}
	return at
}

// Start polls until ctx is done. A failing or panicking task never stops the
// loop.
func (s *Hourly) Start(task func(ctx context.Context)) {
	if s == nil {
		return
	}
	prefix := "HourlyScheduler"
	if s.Name != "" {
		prefix = prefix + "[" + s.Name + "]"
	}
	if task == nil {
		logger.Warnf("%s: task is nil, exit", prefix)
		return
	}
	if err := s.Validate(); err != nil {
		logger.Warnf("%s: %v, exit", prefix, err)
		return
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}
	if s.tickFn == nil {
		s.tickFn = newTicker
	}
	if s.Marker == nil {
		s.Marker = NewMemoryMarker()
	}

	s.setState(StateIdle)
	now := s.nowFn().UTC()
	logger.Infof("%s: started trigger_minute=%d poll=%s next=%s (in %s)",
		prefix, s.TriggerMinute, s.PollInterval,
		s.NextTrigger(now).Format(time.RFC3339), s.NextTrigger(now).Sub(now).Truncate(time.Second))

	ticks, stop := s.tickFn(s.PollInterval)
	defer stop()
	s.setState(StateWaiting)
	s.Poll(task)
	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("%s: ctx done, exit", prefix)
			return
		case <-ticks:
			s.Poll(task)
		}
	}
}

// Poll checks the clock once and runs task if it is due. It reports whether
// the task ran.
func (s *Hourly) Poll(task func(ctx context.Context)) bool {
	now := s.nowFn().UTC()
	if now.Minute() != s.TriggerMinute {
		return false
	}
	hour := HourKey(now)
	fired, err := s.Marker.Fired(hour)
	if err != nil {
		logger.Warnf("HourlyScheduler: read fire marker for %s: %v", hour.Format(time.RFC3339), err)
		return false
	}
	if fired {
		return false
	}
	// The marker is set before the task body so a crash mid-cycle does not
	// refire within the same hour.
	if err := s.Marker.Mark(hour); err != nil {
		logger.Warnf("HourlyScheduler: set fire marker for %s: %v, skip", hour.Format(time.RFC3339), err)
		return false
	}
	s.setState(StateTriggered)
	logger.Infof("HourlyScheduler: fire hour=%s at=%s", hour.Format(time.RFC3339), now.Format(time.RFC3339))
	s.runSafely(task)
	s.setState(StateWaiting)
	return true
}

func (s *Hourly) runSafely(task func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("HourlyScheduler: task panic: %v\n%s", r, debug.Stack())
		}
	}()
	task(s.ctx)
}

func (s *Hourly) setState(st HourlyState) {
	if s.onState != nil {
		s.onState(st)
	}
}

func newTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
