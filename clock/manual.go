package clock

import (
	"chat-sim/contract"
	"sync"
	"time"
)

// Manual is a contract.Clock driven by Advance.
// Callbacks run synchronously on the goroutine calling Advance,
// with Now set to their due time.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	queue *Queue
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start, queue: NewQueue()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) contract.Timer {
	return m.queue.Push(m.Now().Add(d), fn)
}

// Advance moves time forward by d and runs every callback that becomes due,
// including the ones scheduled by callbacks fired during the same advance.
// It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.Now().Add(d)
	fired := 0
	for {
		due, ok := m.queue.Next()
		if !ok || due.After(target) {
			break
		}
		fn, ok := m.queue.PopDue(due)
		if !ok {
			continue
		}
		m.set(due)
		fn()
		fired++
	}
	m.set(target)
	return fired
}

// Pending is the number of callbacks waiting to fire.
func (m *Manual) Pending() int {
	return m.queue.Len()
}

func (m *Manual) set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.After(m.now) {
		m.now = t
	}
}
