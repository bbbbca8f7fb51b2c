// Package random provides deterministic pseudo-random sources for
// reproducible codebook training.
//
// The generator is intentionally not based on math/rand: codebook design must
// reproduce the exact perturbation stream for a given seed across releases
// and platforms, so the recurrence is fixed here and covered by tests.
package random

import "math"

// NormalSource is a sequential stream of standard-normal deviates.
//
// Implementations must be deterministic for a fixed initial state so that
// training runs are bit-reproducible. A source must not be shared across
// concurrent training runs.
type NormalSource interface {
	// Next returns the next deviate from the stream.
	Next() float64

	// Reset rewinds the stream to its initial state.
	Reset()
}

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
)

// NormalGenerator generates standard-normal deviates using a linear
// congruential uniform source and the Marsaglia polar transform. The polar
// transform yields deviates in pairs; the second of each pair is cached and
// returned by the following call.
type NormalGenerator struct {
	seed   int64
	next   uint64
	cached bool
	r2     float64
	s      float64
}

// NewNormalGenerator creates a generator seeded with the given value.
func NewNormalGenerator(seed int64) *NormalGenerator {
	g := &NormalGenerator{seed: seed}
	g.Reset()
	return g
}

// Seed returns the seed the generator was created with.
func (g *NormalGenerator) Seed() int64 {
	return g.seed
}

// Reset rewinds the generator to its initial state. After Reset the generator
// replays the identical deviate sequence.
func (g *NormalGenerator) Reset() {
	g.next = uint64(g.seed)
	g.cached = false
	g.r2 = 0
	g.s = 0
}

// uniform returns the next deviate in [0, 1].
func (g *NormalGenerator) uniform() float64 {
	g.next = g.next*lcgMultiplier + lcgIncrement
	r := float64((g.next / 65536) % 32768)
	return r / 32767.0
}

// Next returns the next standard-normal deviate.
func (g *NormalGenerator) Next() float64 {
	if g.cached {
		g.cached = false
		return g.r2 * g.s
	}

	var r1, r2, s float64
	for {
		r1 = 2*g.uniform() - 1
		r2 = 2*g.uniform() - 1
		s = r1*r1 + r2*r2
		if s <= 1 && s != 0 {
			break
		}
	}
	s = math.Sqrt(-2 * math.Log(s) / s)

	g.r2 = r2
	g.s = s
	g.cached = true

	return r1 * s
}

// SequenceSource replays a fixed sequence of deviates, cycling when
// exhausted. It is intended for tests that need a fully predictable
// perturbation stream.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource creates a SequenceSource over the given values.
// At least one value is required; the sequence cycles forever.
func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &SequenceSource{values: values}
}

// Next returns the next value in the sequence.
func (s *SequenceSource) Next() float64 {
	v := s.values[s.pos]
	s.pos = (s.pos + 1) % len(s.values)
	return v
}

// Reset rewinds the sequence to the beginning.
func (s *SequenceSource) Reset() {
	s.pos = 0
}
