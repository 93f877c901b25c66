package testutil

import (
	"sync"
	"time"
)

// StepClock hands out times advancing by a fixed step per call. Safe for
// concurrent use.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepClock returns a clock whose first Now is start, advancing by
// step on each call.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{next: start, step: step}
}

// Now returns the next scripted instant.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// ScriptClock hands out an explicit sequence of times, repeating the
// last one when the script runs out.
type ScriptClock struct {
	mu    sync.Mutex
	times []time.Time
	pos   int
}

// NewScriptClock returns a clock scripted with the given times. At least
// one time is required.
func NewScriptClock(times ...time.Time) *ScriptClock {
	if len(times) == 0 {
		panic("testutil: ScriptClock needs at least one time")
	}
	return &ScriptClock{times: times}
}

// Now returns the next scripted instant.
func (c *ScriptClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos < len(c.times) {
		t := c.times[c.pos]
		c.pos++
		return t
	}
	return c.times[len(c.times)-1]
}
