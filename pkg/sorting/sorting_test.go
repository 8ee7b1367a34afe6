package sorting

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/nobletooth/pomelo/pkg/randstr"
	"github.com/nobletooth/pomelo/pkg/utils"
	"github.com/stretchr/testify/assert"
)

// intSorts lists every algorithm once so each scenario below runs against all of them.
var intSorts = map[string]func([]int, utils.CompareFn[int]){
	"Bubble":    Bubble[int],
	"Insertion": Insertion[int],
	"Selection": Selection[int],
	"Heap":      Heap[int],
	"Merge":     Merge[int],
	"Quick":     Quick[int],
}

func TestSorts_AgreeWithStdlib(t *testing.T) {
	rnd := rand.New(rand.NewPCG(41, 43))
	random := make([]int, 1_000)
	for i := range random {
		random[i] = rnd.IntN(200) // Duplicates are likely on purpose.
	}
	inputs := map[string][]int{
		"empty":        {},
		"single":       {42},
		"two elements": {2, 1},
		"all equal":    {7, 7, 7, 7},
		"sorted":       {1, 2, 3, 4, 5, 6, 7, 8},
		"reversed":     {8, 7, 6, 5, 4, 3, 2, 1},
		"duplicates":   {3, 1, 3, 2, 1, 2, 3},
		"random":       random,
	}

	for sortName, sortFunc := range intSorts {
		t.Run(sortName, func(t *testing.T) {
			for inputName, input := range inputs {
				t.Run(inputName, func(t *testing.T) {
					expected := slices.Clone(input)
					slices.Sort(expected)
					got := slices.Clone(input)
					sortFunc(got, cmp.Compare)
					assert.Equal(t, expected, got)
					assert.True(t, IsSorted(got, cmp.Compare[int]))
				})
			}
		})
	}
}

func TestSorts_RandomStrings(t *testing.T) {
	input := make([]string, 500)
	for i := range input {
		input[i] = randstr.String(8)
	}
	expected := slices.Clone(input)
	slices.Sort(expected)

	stringSorts := map[string]func([]string, utils.CompareFn[string]){
		"Bubble":    Bubble[string],
		"Insertion": Insertion[string],
		"Selection": Selection[string],
		"Heap":      Heap[string],
		"Merge":     Merge[string],
		"Quick":     Quick[string],
	}
	for sortName, sortFunc := range stringSorts {
		t.Run(sortName, func(t *testing.T) {
			got := slices.Clone(input)
			sortFunc(got, cmp.Compare)
			assert.Equal(t, expected, got)
		})
	}
}

func TestSorts_ReversedComparator(t *testing.T) {
	descending := utils.Reverse(cmp.Compare[int])
	input := []int{5, 1, 4, 2, 3, 2}
	for sortName, sortFunc := range intSorts {
		t.Run(sortName, func(t *testing.T) {
			got := slices.Clone(input)
			sortFunc(got, descending)
			assert.Equal(t, []int{5, 4, 3, 2, 2, 1}, got)
			assert.True(t, IsSorted(got, descending))
			assert.False(t, IsSorted(got, cmp.Compare[int]))
		})
	}
}

// TestStableSorts_PreserveEqualOrder sorts pairs by key only and checks that equal keys keep their input order.
// Only Bubble, Insertion and Merge promise stability.
func TestStableSorts_PreserveEqualOrder(t *testing.T) {
	compareByKey := func(x, y utils.Pair[int, int]) int { return cmp.Compare(x.Key, y.Key) }
	input := make([]utils.Pair[int, int], 100)
	for i := range input {
		input[i] = utils.Pair[int, int]{Key: (i * 7) % 10, Value: i}
	}

	stableSorts := map[string]func([]utils.Pair[int, int], utils.CompareFn[utils.Pair[int, int]]){
		"Bubble":    Bubble[utils.Pair[int, int]],
		"Insertion": Insertion[utils.Pair[int, int]],
		"Merge":     Merge[utils.Pair[int, int]],
	}
	for sortName, sortFunc := range stableSorts {
		t.Run(sortName, func(t *testing.T) {
			got := slices.Clone(input)
			sortFunc(got, compareByKey)
			assert.True(t, IsSorted(got, compareByKey))
			for i := 1; i < len(got); i++ {
				if got[i-1].Key == got[i].Key {
					assert.Lessf(t, got[i-1].Value, got[i].Value,
						"Equal keys changed relative order at index %d.", i)
				}
			}
		})
	}
}

func TestIsSorted(t *testing.T) {
	assert.True(t, IsSorted([]int{}, cmp.Compare[int]))
	assert.True(t, IsSorted([]int{1}, cmp.Compare[int]))
	assert.True(t, IsSorted([]int{1, 2, 2, 3}, cmp.Compare[int]))
	assert.False(t, IsSorted([]int{1, 3, 2}, cmp.Compare[int]))
	assert.False(t, IsSorted([]int{3, 2, 1}, cmp.Compare[int]))
}
