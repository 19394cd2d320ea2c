package sampler

import "math/rand"

// Rand is the random source the sampler draws from. Satisfied by both the
// deterministic SeededRandom and math/rand.
type Rand interface {
	Float64() float64
}

// SeededRandom is a 32-bit deterministic generator (mulberry32 mix).
// Given the same seed and call order it produces the same sequence on
// every platform, which is what makes robust_random_wf runs reproducible.
type SeededRandom struct {
	state uint32
}

// NewSeededRandom creates a generator seeded once with seed.
func NewSeededRandom(seed uint32) *SeededRandom {
	return &SeededRandom{state: seed}
}

// Float64 advances the state and returns a float in [0, 1).
func (r *SeededRandom) Float64() float64 {
	r.state += 0x6D2B79F5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// systemRand adapts the default math/rand source for non-reproducible modes.
type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }
