package cvrdt

import (
	"sync"
	"time"
)

// Timestamp orders the writes to an LWWRegister. Timestamps produced by a
// HybridClock carry milliseconds since the Unix epoch in the high 48 bits
// and a logical counter in the low 16.
type Timestamp int64

const logicalBits = 16

// Time returns the physical part of the timestamp.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts >> logicalBits))
}

// Logical returns the logical counter of the timestamp.
func (ts Timestamp) Logical() uint16 {
	return uint16(ts & (1<<logicalBits - 1))
}

// Clock supplies timestamps for local writes. Successive calls on one
// replica must not go backwards.
type Clock interface {
	Now() Timestamp
}

// ClockFunc adapts a function to a Clock.
type ClockFunc func() Timestamp

func (f ClockFunc) Now() Timestamp {
	return f()
}

// HybridClock is a hybrid logical clock: it follows the wall clock, but
// never returns the same timestamp twice and never goes backwards, even
// when the wall clock does. It is safe for concurrent use, so one clock
// can serve every register of a replica.
type HybridClock struct {
	mu     sync.Mutex
	latest Timestamp
	wall   func() time.Time
}

// NewHybridClock returns a clock following time.Now.
func NewHybridClock() *HybridClock {
	return &HybridClock{wall: time.Now}
}

// Now returns a timestamp strictly greater than any previously returned
// or observed.
func (c *HybridClock) Now() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	physical := Timestamp(c.wall().UnixMilli()) << logicalBits
	if physical > c.latest {
		c.latest = physical
	} else {
		// logical overflow carries into the physical part
		c.latest++
	}
	return c.latest
}

// Observe moves the clock past a timestamp seen from elsewhere, such as
// one adopted from a remote register by Merge.
func (c *HybridClock) Observe(ts Timestamp) {
	c.mu.Lock()
	if ts > c.latest {
		c.latest = ts
	}
	c.mu.Unlock()
}

type observer interface {
	Observe(Timestamp)
}

var defaultClock Clock = NewHybridClock()
