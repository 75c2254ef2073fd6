package engine

import "sync/atomic"

// Generation is the monotonic spin counter.
//
// Each spin and each teardown takes a new value from Next(). Timer callbacks
// capture the value current when they were scheduled and compare it with
// Current() when they fire.
//
// Thread-safety: Generation is safe for concurrent use (atomic operations),
// so observers can read Current() without taking the engine lock.
type Generation struct {
	seq atomic.Int64
}

// NewGeneration creates a counter starting at 0.
func NewGeneration() *Generation {
	return &Generation{}
}

// Next increments the counter and returns the new value.
// Calls are linearizable - each call returns a unique, increasing value.
func (g *Generation) Next() int64 {
	return g.seq.Add(1)
}

// Current returns the current value without incrementing.
func (g *Generation) Current() int64 {
	return g.seq.Load()
}
