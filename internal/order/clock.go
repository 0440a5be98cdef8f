package order

import "sync/atomic"

// Sequencer hands out strictly increasing insertion sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is the default Sequencer: a monotonic logical clock.
//
// Sequence numbers only break ties between equal priorities, so wall-clock
// time is never consulted.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
