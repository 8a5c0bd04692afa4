// Package rng holds the random source handed to the damage resolver and the
// decision policy. Nothing in the simulation reads a global generator.
package rng

import "math/rand/v2"

// Source is the only randomness the simulation consumes.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// New returns a seeded PCG generator. Equal seeds replay identically.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Between draws uniformly from [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
