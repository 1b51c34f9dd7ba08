package device

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

type Buffer struct {
	// Handle to opencl buffer.
	bufHandle cl.Mem

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Allocated size.
	size int
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate a buffer with the given size and flags.
func (b *Buffer) Allocate(size int, flags cl.MemFlags) error {
	return b.create(size, flags, nil)
}

// Allocate a buffer only if the currently allocated buffer cannot hold size
// bytes. Existing contents are not preserved when the buffer grows.
func (b *Buffer) EnsureCapacity(size int, flags cl.MemFlags) error {
	if b.bufHandle != nil && b.size >= size {
		return nil
	}
	return b.create(size, flags, nil)
}

// Allocate a buffer with the given flags that is large enough to hold the given data
// and have opencl copy the data from the host pointer. The behavior of this method is
// undefined if a non-slice argument is passed or the argument does not use contiguous
// memory.
func (b *Buffer) AllocateAndWriteData(data interface{}, flags cl.MemFlags) error {
	dataPtr, dataLen := getSliceData(data)
	return b.create(dataLen, flags|cl.MEM_COPY_HOST_PTR, dataPtr)
}

func (b *Buffer) create(size int, flags cl.MemFlags, hostPtr unsafe.Pointer) error {
	if !b.device.Initialized() {
		return ErrNotInitialized
	}

	var errCode int32

	// If the buffer is already allocated release it
	b.Release()

	b.bufHandle = cl.CreateBuffer(
		*b.device.ctx,
		flags,
		cl.MemFlags(size),
		hostPtr,
		&errCode,
	)

	if cl.ErrorCode(errCode) != cl.SUCCESS {
		b.bufHandle = nil
		return fmt.Errorf("opencl device (%s): could not allocate buffer %s of size %d (error: %s; code %d)", b.device.Name, b.name, size, ErrorName(cl.ErrorCode(errCode)), errCode)
	}

	b.size = size
	return nil
}

// Write data to the device buffer. The behavior of this method is undefined
// if a non-slice argument is passed or the argument does not use contiguous
// memory. The data is copied to the given byte offset inside the buffer.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	dataPtr, dataLen := getSliceData(data)

	if offset+dataLen > b.size {
		return fmt.Errorf("opencl device (%s): insufficient buffer space (%d) in %s for copying data of length %d at offset %d", b.device.Name, b.size, b.name, dataLen, offset)
	}

	errCode := cl.EnqueueWriteBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(offset),
		uint64(dataLen),
		dataPtr,
		0,
		nil,
		nil,
	)

	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying host data to device buffer %s (error: %s; code %d)", b.device.Name, b.name, ErrorName(errCode), errCode)
	}

	return nil
}

// Read data from device buffer into the supplied host buffer. The behavior of
// this method is undefined if a non-slice argument is passed or if the argument
// does not use contiguous memory.
//
// If size is <= 0 then ReadData will read the entire buffer. Both src and dst
// offsets are specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size - srcOffset
	}

	dataPtr, dataLen := getSliceData(hostBuffer)
	if dstOffset+size > dataLen || srcOffset+size > b.size {
		return fmt.Errorf("opencl device (%s): cannot read %d bytes from %s (size %d) at offset %d into host buffer of size %d at offset %d", b.device.Name, size, b.name, b.size, srcOffset, dataLen, dstOffset)
	}

	errCode := cl.EnqueueReadBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(srcOffset),
		uint64(size),
		unsafe.Pointer(uintptr(dataPtr)+uintptr(dstOffset)),
		0,
		nil,
		nil,
	)

	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying device data from %s to host buffer (error: %s; code %d)", b.device.Name, b.name, ErrorName(errCode), errCode)
	}

	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
		b.size = 0
	}
}

// Get opencl buffer handle.
func (b *Buffer) Handle() cl.Mem {
	return b.bufHandle
}

// Given an interface{} containing a slice return a pointer to its data and its length.
func getSliceData(data interface{}) (unsafe.Pointer, int) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("getSliceData: this function only supports slices")
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		panic("getSliceData: supplied slice object is empty")
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		sliceElemCount * int(reflect.TypeOf(data).Elem().Size())
}
