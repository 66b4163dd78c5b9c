package engine

import "sync/atomic"

// Clock is the monotonic logical clock stamping structural events.
//
// Every journal event carries a strictly increasing seq from this clock,
// so event order never depends on wall time and replaying a run walks the
// exact sequence that was recorded.
//
// Thread-safety: Clock uses atomic operations, though the engine's
// single-threaded design means only one goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
