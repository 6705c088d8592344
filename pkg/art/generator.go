package art

import (
	"math"
	"math/rand/v2"
)

// golden is the SplitMix64 increment (2^64 / phi).
const golden = 0x9e3779b97f4a7c15

// Generator is the seeded pseudo-random source shared by one render pass.
//
// Every draw advances the state, so the sequence of values a component sees
// depends only on the seed and on how many draws happened before it. A
// Generator must not be shared between concurrent renders; build a fresh
// one from the same seed instead.
type Generator struct {
	src   *rand.PCG
	draws int
}

// NewGenerator returns a Generator for seed.
//
// The IEEE-754 bits of the seed are mixed through SplitMix64 into the two
// PCG state words, so neighbouring seeds (0 and 1, or 0.42 and 0.43) yield
// unrelated streams. NaN and infinities map to seed 0; -0 and +0 are the
// same seed.
func NewGenerator(seed float64) *Generator {
	if math.IsNaN(seed) || math.IsInf(seed, 0) || seed == 0 {
		seed = 0
	}
	hi := splitmix64(math.Float64bits(seed))
	lo := splitmix64(hi ^ golden)
	return &Generator{src: rand.NewPCG(hi, lo)}
}

// Next returns the next value in [0, 1).
func (g *Generator) Next() float64 {
	g.draws++
	return float64(g.src.Uint64()>>11) * 0x1p-53
}

// Draws reports how many values have been drawn so far.
func (g *Generator) Draws() int { return g.draws }

// State returns an opaque snapshot of the generator state. Two snapshots
// are equal exactly when the generators will produce the same sequence.
func (g *Generator) State() []byte {
	b, _ := g.src.MarshalBinary()
	return b
}

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
