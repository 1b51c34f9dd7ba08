package bvh

const (
	radixDigitBits = 4
	radixBuckets   = 1 << radixDigitBits
	radixPasses    = 32 / radixDigitBits
)

// RadixSortPairs sorts keys in ascending order and applies the same
// permutation to values. The sort is stable and mirrors the device radix
// sort: each pass counts 4-bit digits, turns the histogram into offsets with
// an exclusive prefix sum and scatters into a second buffer pair. The buffers
// are swapped after every pass; since the pass count is even the sorted data
// ends up in the input slices.
func RadixSortPairs(keys []uint32, values []int) {
	if len(keys) != len(values) {
		panic("bvh: RadixSortPairs called with mismatched key/value lengths")
	}
	if len(keys) < 2 {
		return
	}

	srcKeys, srcVals := keys, values
	dstKeys, dstVals := make([]uint32, len(keys)), make([]int, len(values))

	var offsets [radixBuckets]int
	for pass := 0; pass < radixPasses; pass++ {
		shift := uint(pass * radixDigitBits)

		// count
		offsets = [radixBuckets]int{}
		for _, k := range srcKeys {
			offsets[(k>>shift)&(radixBuckets-1)]++
		}

		// exclusive scan
		var sum int
		for b := 0; b < radixBuckets; b++ {
			count := offsets[b]
			offsets[b] = sum
			sum += count
		}

		// scatter
		for i, k := range srcKeys {
			digit := (k >> shift) & (radixBuckets - 1)
			dst := offsets[digit]
			offsets[digit]++
			dstKeys[dst] = k
			dstVals[dst] = srcVals[i]
		}

		srcKeys, dstKeys = dstKeys, srcKeys
		srcVals, dstVals = dstVals, srcVals
	}
}
