// Package engine holds the session-generation rules: day classification,
// power gating, bucket selection, protocol resolution, load labels,
// session composition and state advancement. It performs no I/O.
package engine

import (
	"math/rand/v2"
	"time"
)

// Rand is the source for every uniform pick. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a PCG-backed source seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSeededRand returns a source seeded from the wall clock.
func NewTimeSeededRand() *rand.Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

func pick[T any](rng Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
