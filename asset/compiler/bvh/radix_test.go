package bvh

import (
	"math/rand"
	"sort"
	"testing"
)

func TestRadixSortPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	count := 5000
	keys := make([]uint32, count)
	values := make([]int, count)
	for i := range keys {
		// Use a narrow key range to get plenty of duplicates.
		keys[i] = rng.Uint32() % 512
		if i%3 == 0 {
			keys[i] |= rng.Uint32() & 0xFFFF0000
		}
		values[i] = i
	}

	type pair struct {
		key   uint32
		value int
	}
	exp := make([]pair, count)
	for i := range keys {
		exp[i] = pair{keys[i], values[i]}
	}
	sort.SliceStable(exp, func(i, j int) bool { return exp[i].key < exp[j].key })

	RadixSortPairs(keys, values)

	for i := range exp {
		if keys[i] != exp[i].key || values[i] != exp[i].value {
			t.Fatalf("position %d: expected (%d, %d); got (%d, %d)", i, exp[i].key, exp[i].value, keys[i], values[i])
		}
	}
}

func TestRadixSortPairsShortInput(t *testing.T) {
	keys := []uint32{42}
	values := []int{3}
	RadixSortPairs(keys, values)
	if keys[0] != 42 || values[0] != 3 {
		t.Fatalf("expected single pair to be untouched; got (%d, %d)", keys[0], values[0])
	}

	RadixSortPairs(nil, nil)
}

func TestRadixSortPairsMismatchedLengths(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for mismatched lengths")
		}
	}()
	RadixSortPairs([]uint32{1, 2}, []int{1})
}
