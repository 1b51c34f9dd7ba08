package lbvh

import (
	"reflect"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
	"github.com/achilleasa/lbvh/tracer/opencl/radix"
)

// Size of buffer elements in bytes.
const (
	sizeofVec4    = 16
	sizeofUint    = 4
	sizeofInt2    = 8
	sizeofBvhNode = 48
)

type bufferSet struct {
	// Item centers and boxes (min/max pairs) in input order.
	Centers *device.Buffer
	Boxes   *device.Buffer

	// Bounds reduction.
	PartialMin *device.Buffer
	PartialMax *device.Buffer
	Bounds     *device.Buffer

	// Morton codes and item indices; sorted in place.
	Codes   *device.Buffer
	Indices *device.Buffer

	// Hierarchy.
	Nodes    *device.Buffer
	Parents  *device.Buffer
	Children *device.Buffer
	Counters *device.Buffer
}

// Allocate new buffer set.
func newBufferSet(dev *device.Device) *bufferSet {
	return &bufferSet{
		Centers:    dev.Buffer("lbvhCenters"),
		Boxes:      dev.Buffer("lbvhBoxes"),
		PartialMin: dev.Buffer("lbvhPartialMin"),
		PartialMax: dev.Buffer("lbvhPartialMax"),
		Bounds:     dev.Buffer("lbvhBounds"),
		Codes:      dev.Buffer("lbvhCodes"),
		Indices:    dev.Buffer("lbvhIndices"),
		Nodes:      dev.Buffer("bvhNodes"),
		Parents:    dev.Buffer("lbvhParents"),
		Children:   dev.Buffer("lbvhChildren"),
		Counters:   dev.Buffer("lbvhCounters"),
	}
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)

	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		reflVal.Field(fieldIndex).Interface().(*device.Buffer).Release()
	}
}

// Allocate buffers for building a tree with count leaves. Buffers that are
// already large enough are reused.
func (bs *bufferSet) Reserve(count int) error {
	var err error

	numBlocks := (count + radix.BlockSize - 1) / radix.BlockSize
	numNodes := 2*count - 1
	// Internal node buffers are never empty so they can always be bound.
	numInternal := count - 1
	if numInternal < 1 {
		numInternal = 1
	}

	sizes := []struct {
		buf  *device.Buffer
		size int
	}{
		{bs.Centers, count * sizeofVec4},
		{bs.Boxes, 2 * count * sizeofVec4},
		{bs.PartialMin, numBlocks * sizeofVec4},
		{bs.PartialMax, numBlocks * sizeofVec4},
		{bs.Bounds, 2 * sizeofVec4},
		{bs.Codes, count * sizeofUint},
		{bs.Indices, count * sizeofUint},
		{bs.Nodes, numNodes * sizeofBvhNode},
		{bs.Parents, numNodes * sizeofUint},
		{bs.Children, numInternal * sizeofInt2},
		{bs.Counters, numInternal * sizeofUint},
	}

	for _, s := range sizes {
		err = s.buf.EnsureCapacity(s.size, cl.MEM_READ_WRITE)
		if err != nil {
			return err
		}
	}

	return nil
}
