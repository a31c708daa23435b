package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a fake wall clock for tests.
//
// Every call to Now advances the clock by Step, so timestamps taken in a
// test are distinct, increasing and identical across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// Epoch is the fixed start time of every DeterministicClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDeterministicClock creates a clock at Epoch advancing one millisecond
// per reading.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{start: Epoch, now: Epoch, step: time.Millisecond}
}

// Now returns the current time and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Readings returns how many times Now has been called.
func (c *DeterministicClock) Readings() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(c.now.Sub(c.start) / c.step)
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
