package testutil

import "sync"

// SequenceRNG returns values from a pre-set sequence, wrapping around.
// Each value is reduced modulo n, so 0 always picks the first element.
type SequenceRNG struct {
	mu     sync.Mutex
	values []int
	idx    int
}

// NewSequenceRNG creates an RNG cycling through values. With no values it always returns 0.
func NewSequenceRNG(values ...int) *SequenceRNG {
	if len(values) == 0 {
		values = []int{0}
	}
	return &SequenceRNG{values: values}
}

// Intn implements engine.RNG.
func (r *SequenceRNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

// Calls returns how many values have been drawn.
func (r *SequenceRNG) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}
