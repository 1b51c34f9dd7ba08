package bvh

import (
	"testing"

	"github.com/achilleasa/lbvh/types"
)

func TestExpandBitsRoundTrip(t *testing.T) {
	for v := uint32(0); v <= mortonMaxCoord; v++ {
		expanded := ExpandBits(v)
		if expanded&^0x09249249 != 0 {
			t.Fatalf("expected expanded bits of %d to only use every third bit; got %#x", v, expanded)
		}
		if got := CompactBits(expanded); got != v {
			t.Fatalf("expected compact(expand(%d)) to be %d; got %d", v, v, got)
		}
	}
}

func TestEncodeDecodeMorton(t *testing.T) {
	specs := [][3]uint32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1023, 1023, 1023},
		{512, 3, 700},
		{17, 1000, 256},
	}

	for _, spec := range specs {
		code := EncodeMorton(spec[0], spec[1], spec[2])
		if code >= 1<<MortonCodeBits {
			t.Fatalf("expected code for %v to fit in %d bits; got %#x", spec, MortonCodeBits, code)
		}
		x, y, z := DecodeMorton(code)
		if x != spec[0] || y != spec[1] || z != spec[2] {
			t.Fatalf("expected decoded coords to be %v; got [%d %d %d]", spec, x, y, z)
		}
	}

	if got := EncodeMorton(1, 1, 1); got != 7 {
		t.Fatalf("expected interleaved code for (1,1,1) to be 7; got %d", got)
	}
}

func TestMortonCodesNormalization(t *testing.T) {
	points := []types.Vec3{
		{0, 5, 5},
		{10, 5, 5},
		{5, 5, 5},
	}

	codes := MortonCodes(points, 2)
	for i, code := range codes {
		_, y, z := DecodeMorton(code)
		if y != 0 || z != 0 {
			t.Fatalf("point %d: expected zero-width axes to quantize to 0; got y=%d z=%d", i, y, z)
		}
	}

	x0, _, _ := DecodeMorton(codes[0])
	x1, _, _ := DecodeMorton(codes[1])
	x2, _, _ := DecodeMorton(codes[2])
	if x0 != 0 || x1 != mortonMaxCoord {
		t.Fatalf("expected extremes to map to 0 and %d; got %d and %d", mortonMaxCoord, x0, x1)
	}
	if x2 <= x0 || x2 >= x1 {
		t.Fatalf("expected midpoint to quantize between extremes; got %d", x2)
	}
}

func TestMortonCodesDegenerate(t *testing.T) {
	points := []types.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	for i, code := range MortonCodes(points, 0) {
		if code != 0 {
			t.Fatalf("expected code for coincident point %d to be 0; got %d", i, code)
		}
	}

	if codes := MortonCodes(nil, 0); len(codes) != 0 {
		t.Fatalf("expected no codes for empty input; got %d", len(codes))
	}
}
