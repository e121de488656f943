// Package sim models the slice of the host simulation the extension owns:
// actors, the apparel they wear, their anatomy and the current tick.
package sim

import "sync/atomic"

// Clock is the host's tick counter as last reported to us. Writers are
// serialized by the caller; Tick may be read from any goroutine.
type Clock struct {
	tick atomic.Int64
}

// NewClock starts a clock at tick.
func NewClock(tick int) *Clock {
	c := &Clock{}
	c.tick.Store(int64(tick))
	return c
}

func (c *Clock) Tick() int {
	return int(c.tick.Load())
}

// Advance moves the clock forward to tick and returns the previous tick.
// Ticks in the past are ignored.
func (c *Clock) Advance(tick int) int {
	prev := c.Tick()
	if tick > prev {
		c.tick.Store(int64(tick))
	}
	return prev
}

// Reset sets the clock unconditionally. See World.ResetClock.
func (c *Clock) Reset(tick int) {
	c.tick.Store(int64(tick))
}
