package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterThresholdAndProbes(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("webhook", 2, time.Minute)
	cb.SetClock(func() time.Time { return now })
	cb.SetStateChangeHandler(func(string, State, State) {})

	boom := errors.New("boom")
	assert.ErrorIs(t, cb.Do(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Do(func() error { called = true; return nil }))
	assert.True(t, called)
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("webhook", 1, time.Second)
	cb.SetClock(func() time.Time { return now })
	cb.SetStateChangeHandler(func(string, State, State) {})

	cb.RecordFailure()
	require.Equal(t, StateOpen, cb.State())
	now = now.Add(2 * time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "HALF-OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestHalfOpenAllowsSingleProbe(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("reference", 1, time.Second)
	cb.SetClock(func() time.Time { return now })
	cb.SetStateChangeHandler(func(string, State, State) {})

	cb.RecordFailure()
	now = now.Add(time.Second)
	require.True(t, cb.Allow())
	assert.False(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}
