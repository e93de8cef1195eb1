package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic clock for tests.
//
// Each call to Now returns the current instant and then advances it by a
// fixed step, so every measured interval equals the step.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// DefaultStart is the first instant returned by a StepClock built with a zero start.
var DefaultStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewStepClock creates a clock starting at start and advancing by step.
// A zero start uses DefaultStart.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	if start.IsZero() {
		start = DefaultStart
	}
	return &StepClock{now: start, step: step}
}

// Now returns the current instant and advances the clock by one step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the next instant without advancing.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the elapsed time from t to the current instant, advancing the
// clock by one step like Now.
func (c *StepClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}
