package bvh

import (
	"github.com/achilleasa/lbvh/types"
)

const (
	// Number of bits per axis in a morton code.
	mortonBitsPerAxis = 10

	// Largest quantized coordinate value.
	mortonMaxCoord = (1 << mortonBitsPerAxis) - 1

	// Number of significant bits in a morton code.
	MortonCodeBits = 3 * mortonBitsPerAxis
)

// ExpandBits spreads the low 10 bits of v so that two zero bits separate each
// pair of consecutive input bits.
func ExpandBits(v uint32) uint32 {
	v &= mortonMaxCoord
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// CompactBits reverses ExpandBits by collecting every third bit of v.
func CompactBits(v uint32) uint32 {
	v &= 0x09249249
	v = (v ^ (v >> 2)) & 0x030C30C3
	v = (v ^ (v >> 4)) & 0x0300F00F
	v = (v ^ (v >> 8)) & 0x030000FF
	v = (v ^ (v >> 16)) & 0x000003FF
	return v
}

// EncodeMorton interleaves three 10-bit coordinates into a 30-bit code.
func EncodeMorton(x, y, z uint32) uint32 {
	return ExpandBits(x) | ExpandBits(y)<<1 | ExpandBits(z)<<2
}

// DecodeMorton extracts the three 10-bit coordinates from a morton code.
func DecodeMorton(code uint32) (x, y, z uint32) {
	return CompactBits(code), CompactBits(code >> 1), CompactBits(code >> 2)
}

// Quantize a coordinate into [0, 1023] relative to [min, min+extent]. A zero
// width axis always maps to 0.
func quantize(c, min, extent float32) uint32 {
	if extent <= 0 {
		return 0
	}
	v := (c - min) / extent * mortonMaxCoord
	if v <= 0 {
		return 0
	}
	if v >= mortonMaxCoord {
		return mortonMaxCoord
	}
	return uint32(v)
}

// MortonCode returns the code for point p inside bounds.
func MortonCode(p types.Vec3, bounds AABB) uint32 {
	extent := bounds.Extent()
	return EncodeMorton(
		quantize(p[0], bounds.Min[0], extent[0]),
		quantize(p[1], bounds.Min[1], extent[1]),
		quantize(p[2], bounds.Min[2], extent[2]),
	)
}

// MortonCodes computes a code for each point, normalized against the bounds of
// the whole point set. Codes are generated in parallel.
func MortonCodes(points []types.Vec3, workers int) []uint32 {
	codes := make([]uint32, len(points))
	if len(points) == 0 {
		return codes
	}

	bounds := AABBFromPoints(points...)
	parallelFor(len(points), workers, func(i int) {
		codes[i] = MortonCode(points[i], bounds)
	})
	return codes
}
