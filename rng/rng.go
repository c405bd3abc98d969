// Package rng abstracts randomness so fault detection (ordering the peers
// to probe) and the simulated network can run against either real
// entropy or a seeded, reproducible sequence in tests and simulations.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source produces the randomness the waiting room needs: shuffling the
// fault-detection probe queue, and sampling latency and message drops in
// the simulated transport.
type Source interface {
	// Uint64N returns a pseudo-random number in [0, n).
	Uint64N(n uint64) uint64
	// Shuffle randomizes the order of a slice of length n using swap,
	// following the same contract as math/rand.Shuffle.
	Shuffle(n int, swap func(i, j int))
}

// True is a Source backed by a cryptographically seeded PRNG, suitable
// for production nodes where the exact probe order doesn't need to be
// reproducible.
type True struct {
	r *rand.Rand
}

// NewTrue returns a Source seeded from the OS entropy pool.
func NewTrue() *True {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing means the OS entropy source is broken; fall
		// back to a fixed seed rather than leaving the PRNG uninitialised.
		binary.LittleEndian.PutUint64(seed[:8], 0xC0FFEE)
	}
	s1 := binary.LittleEndian.Uint64(seed[0:8])
	s2 := binary.LittleEndian.Uint64(seed[8:16])
	return &True{r: rand.New(rand.NewPCG(s1, s2))}
}

func (t *True) Uint64N(n uint64) uint64 { return t.r.Uint64N(n) }
func (t *True) Shuffle(n int, swap func(i, j int)) { t.r.Shuffle(n, swap) }

// Deterministic is a Source seeded from a fixed value, giving byte-for-byte
// reproducible probe orders and shuffles across runs. The simulation
// harness and tests use this so a failing scenario can be replayed.
type Deterministic struct {
	r *rand.Rand
}

// NewDeterministic returns a Source that always produces the same sequence
// for a given seed.
func NewDeterministic(seed uint64) *Deterministic {
	return &Deterministic{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (d *Deterministic) Uint64N(n uint64) uint64 { return d.r.Uint64N(n) }
func (d *Deterministic) Shuffle(n int, swap func(i, j int)) { d.r.Shuffle(n, swap) }
