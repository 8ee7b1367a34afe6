// Skip lists spread nodes over levels probabilistically: level 0 holds every
// node and each level above holds a random subset of the level below it, so the
// tallest towers form express lanes for descents. This file owns that
// distribution. The chance that a node reaches level n is p times the chance of
// reaching level n-1, truncated at the configured bound; the default generator
// should suffice, but custom distributions can be swapped in through the
// LevelGenerator interface.

package skiplist

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// DefaultLevelBound caps towers at 16 levels, comfortable for tens of
	// thousands of elements at the default probability.
	DefaultLevelBound = 16
	// DefaultP is the level continuation probability used when none is given.
	DefaultP = 0.5

	// pEpsilon rejects probabilities close enough to 0 or 1 to degenerate the
	// distribution: every tower stays at height 1, or every tower saturates
	// the bound.
	pEpsilon = 1e-3
)

// LevelGenerator draws the level for each newly inserted node. Implementations
// must keep Random() inside [1, LevelBound()-1] whenever LevelBound() > 1, and
// return 1 when the bound is 1; the engine treats draws outside that range as a
// structural defect, not as caller input.
type LevelGenerator interface {
	LevelBound() int // The maximum tower height any node, head included, may have.
	Random() int     // The drawn level for the next inserted node; never 0.
}

// GeometricLevelGenerator produces geometrically distributed levels:
// P(Random() >= n) = p^(n-1), cut off one below the level bound.
type GeometricLevelGenerator struct { // Implements LevelGenerator.
	levelBound int
	p          float64
	rnd        *rand.Rand
}

var _ LevelGenerator = (*GeometricLevelGenerator)(nil)

// NewGeometricLevelGenerator builds a generator with `levelBound` levels and
// continuation probability `p`, seeded from the shared randomness source.
// `p` must lie strictly inside (0, 1); `levelBound` must be at least 1.
func NewGeometricLevelGenerator(levelBound int, p float64) (*GeometricLevelGenerator, error) {
	return NewGeometricLevelGeneratorWithRand(levelBound, p, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewGeometricLevelGeneratorWithRand is NewGeometricLevelGenerator with an
// injected randomness source, letting tests pin the sequence of draws.
func NewGeometricLevelGeneratorWithRand(levelBound int, p float64, rnd *rand.Rand) (*GeometricLevelGenerator, error) {
	if levelBound <= 0 {
		return nil, fmt.Errorf("%w: level bound must be positive, got %d", ErrInvalidParameter, levelBound)
	}
	if math.Abs(p) < pEpsilon || math.Abs(p-1) < pEpsilon {
		return nil, fmt.Errorf("%w: probability %v degenerates the level distribution", ErrInvalidParameter, p)
	}
	if rnd == nil {
		return nil, fmt.Errorf("%w: nil randomness source", ErrInvalidParameter)
	}
	return &GeometricLevelGenerator{levelBound: levelBound, p: p, rnd: rnd}, nil
}

// LevelBound returns the maximum tower height this generator assumes.
func (g *GeometricLevelGenerator) LevelBound() int {
	return g.levelBound
}

// Random draws the level for one node with a single uniform sample: the level
// climbs while the sample stays below the running threshold p^level. The draw
// lands in [1, levelBound-1], or is exactly 1 when the bound itself is 1.
func (g *GeometricLevelGenerator) Random() int {
	level := 1
	threshold := g.p
	draw := 1.0 - g.rnd.Float64() // Uniform over (0, 1]; keeps P(level >= n) = p^(n-1) exact.
	for threshold > draw && level+1 < g.levelBound {
		level++
		threshold *= g.p
	}
	return level
}
