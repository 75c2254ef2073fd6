package engine

import "math/rand/v2"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a uniformly distributed int in [0, n). n > 0.
	Intn(n int) int
}

// DefaultRNG draws from math/rand/v2's auto-seeded global source.
// rand.IntN is unbiased (multiply-shift with rejection), so every index in
// [0, n) is equally likely for any n.
type DefaultRNG struct{}

// Intn implements RNG.
func (DefaultRNG) Intn(n int) int { return rand.IntN(n) }
