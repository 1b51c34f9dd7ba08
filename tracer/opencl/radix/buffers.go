package radix

import (
	"reflect"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
)

// Size of buffer elements in bytes.
const (
	sizeofKey   = 4 // uint32
	sizeofValue = 4 // uint32
	sizeofCount = 4 // uint32
)

type bufferSet struct {
	// Ping-pong targets for the keys and values.
	Keys   *device.Buffer
	Values *device.Buffer

	// Per work group digit counts; scanned in place into scatter offsets.
	Histograms *device.Buffer

	// Scan chunk totals.
	BlockSums *device.Buffer
}

// Allocate new buffer set.
func newBufferSet(dev *device.Device) *bufferSet {
	return &bufferSet{
		Keys:       dev.Buffer("radixKeys"),
		Values:     dev.Buffer("radixValues"),
		Histograms: dev.Buffer("radixHistograms"),
		BlockSums:  dev.Buffer("radixBlockSums"),
	}
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)

	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		reflVal.Field(fieldIndex).Interface().(*device.Buffer).Release()
	}
}

// Make sure that the scratch buffers can hold count items. Buffers are only
// reallocated when they need to grow.
func (bs *bufferSet) Reserve(count int) error {
	var err error

	err = bs.Keys.EnsureCapacity(count*sizeofKey, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}
	err = bs.Values.EnsureCapacity(count*sizeofValue, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}
	err = bs.Histograms.EnsureCapacity(histogramLen(count)*sizeofCount, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}
	err = bs.BlockSums.EnsureCapacity(scanBlockSize*sizeofCount, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}

	return nil
}
