package scheduler

import (
	"sync"
	"time"
)

// FireMarker remembers which settlement hours already fired.
type FireMarker interface {
	Fired(hour time.Time) (bool, error)
	Mark(hour time.Time) error
}

// HourKey truncates t to its UTC hour.
func HourKey(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// MemoryMarker is a process-scoped marker. It only keeps the latest hour, so
// it resets itself once the hour rolls over. It does not survive restarts.
type MemoryMarker struct {
	mu   sync.Mutex
	last time.Time
}

func NewMemoryMarker() *MemoryMarker { return &MemoryMarker{} }

func (m *MemoryMarker) Fired(hour time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.last.IsZero() && m.last.Equal(HourKey(hour)), nil
}

func (m *MemoryMarker) Mark(hour time.Time) error {
	m.mu.Lock()
	m.last = HourKey(hour)
	m.mu.Unlock()
	return nil
}
