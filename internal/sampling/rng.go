// Package sampling provides the pseudorandom draws behind company outcomes.
// Every function takes an explicit generator so runs are reproducible from a seed.
package sampling

import "math/rand/v2"

// NewRand creates a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Stream derives an independent generator for realization index of a seeded run.
// The same (seed, index) pair always yields the same sequence regardless of
// which worker evaluates it.
func Stream(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)+1))
}

