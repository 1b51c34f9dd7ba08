package radix

import (
	"fmt"
	"time"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/tracer/opencl"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
)

// These values must match the defines in CL/main.cl.
const (
	// Work group size of every dispatch.
	BlockSize = 256

	radixBits     = 4
	radixBuckets  = 1 << radixBits
	radixPasses   = 32 / radixBits
	scanBlockSize = 2 * BlockSize
)

// The maximum number of items that can be sorted in one go. The digit
// histograms of all work groups are scanned with a two-level scan whose
// second level runs in a single work group.
const MaxItems = scanBlockSize * scanBlockSize / radixBuckets * BlockSize

// Get the number of work groups used for sorting count items.
func numBlocks(count int) int {
	return (count + BlockSize - 1) / BlockSize
}

// Get the number of histogram entries used for sorting count items.
func histogramLen(count int) int {
	return numBlocks(count) * radixBuckets
}

// A Sorter performs a stable least-significant-digit radix sort of uint32
// key/value pairs on an opencl device. Each of the 8 passes counts the 4-bit
// digits of every work group, turns the counts into scatter offsets with a
// Blelloch scan and scatters the pairs into a second buffer set.
type Sorter struct {
	logger log.Logger

	// The associated device. The sorter does not own the device.
	device *device.Device

	kernels []*device.Kernel
	buffers *bufferSet
}

// Create a new sorter using the given device. The device is initialized if
// required.
func NewSorter(dev *device.Device) (*Sorter, error) {
	err := opencl.InitDevice(dev)
	if err != nil {
		return nil, err
	}

	if dev.MaxWorkGroupSize > 0 && dev.MaxWorkGroupSize < BlockSize {
		return nil, fmt.Errorf("radix sort: device %s supports work groups of up to %d items; %d required", dev.Name, dev.MaxWorkGroupSize, BlockSize)
	}

	s := &Sorter{
		logger:  log.New("radix sort"),
		device:  dev,
		buffers: newBufferSet(dev),
		kernels: make([]*device.Kernel, numKernels),
	}

	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		s.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Release the sorter kernels and scratch buffers.
func (s *Sorter) Close() {
	if s.buffers != nil {
		s.buffers.Release()
		s.buffers = nil
	}

	if s.kernels != nil {
		for _, kernel := range s.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		s.kernels = nil
	}
}

// Sort the first count uint32 keys in the keys buffer and apply the same
// permutation to the values buffer. The sorted pairs are written back to the
// supplied buffers.
func (s *Sorter) Sort(keys, values *device.Buffer, count int) error {
	if count > MaxItems {
		return ErrTooManyItems
	}
	if count < 2 {
		return nil
	}
	if keys.Size() < count*sizeofKey || values.Size() < count*sizeofValue {
		return fmt.Errorf("radix sort: buffers %d/%d bytes are too small for %d items", keys.Size(), values.Size(), count)
	}

	err := s.buffers.Reserve(count)
	if err != nil {
		return err
	}

	var (
		blocks        = numBlocks(count)
		histLen       = histogramLen(count)
		numScanBlocks = (histLen + scanBlockSize - 1) / scanBlockSize
		srcKeys       = keys
		srcValues     = values
		dstKeys       = s.buffers.Keys
		dstValues     = s.buffers.Values
		totalTime     time.Duration
		elapsed       time.Duration
	)

	for pass := 0; pass < radixPasses; pass++ {
		shift := uint32(pass * radixBits)

		steps := []struct {
			kernel     kernelType
			args       []interface{}
			globalSize int
		}{
			{radixCount, []interface{}{srcKeys, uint32(count), shift, s.buffers.Histograms}, blocks * BlockSize},
			{scanBlocks, []interface{}{s.buffers.Histograms, uint32(histLen), s.buffers.BlockSums, device.LocalMem(scanBlockSize * sizeofCount)}, numScanBlocks * BlockSize},
			{scanBlockSums, []interface{}{s.buffers.BlockSums, uint32(numScanBlocks), device.LocalMem(scanBlockSize * sizeofCount)}, BlockSize},
			{addBlockOffsets, []interface{}{s.buffers.Histograms, uint32(histLen), s.buffers.BlockSums}, opencl.RoundUp(histLen, BlockSize)},
			{radixReorder, []interface{}{srcKeys, srcValues, dstKeys, dstValues, uint32(count), shift, s.buffers.Histograms}, blocks * BlockSize},
		}

		for _, step := range steps {
			kernel := s.kernels[step.kernel]
			err = kernel.SetArgs(step.args...)
			if err != nil {
				return err
			}
			elapsed, err = kernel.Exec1D(0, step.globalSize, BlockSize)
			if err != nil {
				return err
			}
			totalTime += elapsed
		}

		srcKeys, dstKeys = dstKeys, srcKeys
		srcValues, dstValues = dstValues, srcValues
	}

	s.logger.Debugf("sorted %d items in %d ms", count, totalTime.Nanoseconds()/1e6)
	return nil
}

// Upload keys and values to the device, sort them and read back the results
// into the supplied slices.
func (s *Sorter) SortPairs(keys, values []uint32) error {
	if len(keys) != len(values) {
		return ErrSizeMismatch
	}
	if len(keys) > MaxItems {
		return ErrTooManyItems
	}
	if len(keys) < 2 {
		return nil
	}

	keyBuf := s.device.Buffer("sortKeys")
	defer keyBuf.Release()
	valueBuf := s.device.Buffer("sortValues")
	defer valueBuf.Release()

	err := keyBuf.AllocateAndWriteData(keys, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}
	err = valueBuf.AllocateAndWriteData(values, cl.MEM_READ_WRITE)
	if err != nil {
		return err
	}

	err = s.Sort(keyBuf, valueBuf, len(keys))
	if err != nil {
		return err
	}

	err = keyBuf.ReadData(0, 0, 0, keys)
	if err != nil {
		return err
	}
	return valueBuf.ReadData(0, 0, 0, values)
}
