package skiplist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometricLevelGenerator_RejectsDegenerateParameters(t *testing.T) {
	for _, testCase := range []struct {
		name       string
		levelBound int
		p          float64
	}{
		{name: "zero level bound", levelBound: 0, p: 0.5},
		{name: "negative level bound", levelBound: -3, p: 0.5},
		{name: "p at zero", levelBound: 1, p: 0.0},
		{name: "p at one", levelBound: 1, p: 1.0},
		{name: "p within epsilon of zero", levelBound: 16, p: 1e-4},
		{name: "p within epsilon of one", levelBound: 16, p: 1 - 1e-4},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewGeometricLevelGenerator(testCase.levelBound, testCase.p)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestGeometricLevelGenerator_NilRandSource(t *testing.T) {
	_, err := NewGeometricLevelGeneratorWithRand(16, 0.5, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGeometricLevelGenerator_AcceptsMinimalBound(t *testing.T) {
	generator, err := NewGeometricLevelGenerator(1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, generator.LevelBound())
}

func TestGeometricLevelGenerator_DrawsStayInRange(t *testing.T) {
	const levelBound = 5
	generator, err := NewGeometricLevelGenerator(levelBound, 0.5)
	require.NoError(t, err)
	for range 10_000 {
		drawn := generator.Random()
		assert.GreaterOrEqual(t, drawn, 1)
		assert.Less(t, drawn, levelBound)
	}
}

func TestGeometricLevelGenerator_BoundOneAlwaysDrawsOne(t *testing.T) {
	generator, err := NewGeometricLevelGenerator(1, 0.5)
	require.NoError(t, err)
	for range 100 {
		assert.Equal(t, 1, generator.Random())
	}
}

// TestGeometricLevelGenerator_Distribution pins the RNG seed and checks that
// the fraction of draws reaching each level tracks p^(n-1) within five
// standard deviations of the sample size.
func TestGeometricLevelGenerator_Distribution(t *testing.T) {
	const p, samples = 0.5, 200_000
	generator, err := NewGeometricLevelGeneratorWithRand(32, p, rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)

	counts := make(map[int]int)
	for range samples {
		counts[generator.Random()]++
	}

	for _, level := range []int{2, 3, 4} {
		reached := 0
		for drawn, count := range counts {
			if drawn >= level {
				reached += count
			}
		}
		expected := math.Pow(p, float64(level-1))
		tolerance := 5 * math.Sqrt(expected*(1-expected)/samples)
		assert.InDeltaf(t, expected, float64(reached)/samples, tolerance,
			"Fraction of draws reaching level %d drifted from p^(n-1)", level)
	}
}
