package journal

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is the default Sequencer. Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClockAt returns a clock whose first Next is start+1. Open uses it to
// resume after the highest seq already journaled.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last number handed out, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
