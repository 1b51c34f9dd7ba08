package device

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/types"
)

// LocalMem reserves the given number of bytes of work group local memory
// when passed as a kernel argument.
type LocalMem int

// A wrapper around opencl kernelHandles.
type Kernel struct {
	device       *Device
	kernelHandle cl.Kernel
	name         string

	// kernelHandle workgroup sizes and offsets
	offsets         [1]uint64
	globalWorkSizes [1]uint64
	localWorkSizes  [1]uint64
}

// Get the kernel name.
func (k *Kernel) Name() string {
	return k.name
}

// Free any allocated resources used by this kernel.
func (k *Kernel) Release() {
	if k.kernelHandle != nil {
		cl.ReleaseKernel(k.kernelHandle)
		k.kernelHandle = nil
	}
}

// Bind arguments to kernelHandle.
func (k *Kernel) SetArgs(args ...interface{}) error {
	var errCode cl.ErrorCode
	for argIndex, arg := range args {
		// We can't use the captured type from the switch
		// like switch t := arg.(type) as we get back an
		// interface and we need to obtain a pointer to the underlying data.
		switch arg.(type) {
		case *Buffer:
			bufHandle := arg.(*Buffer).Handle()
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), 8, unsafe.Pointer(&bufHandle))
		case LocalMem:
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), uint64(arg.(LocalMem)), nil)
		case int32:
			v := arg.(int32)
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case uint32:
			v := arg.(uint32)
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case float32:
			v := arg.(float32)
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case types.Vec4:
			v := arg.(types.Vec4)
			errCode = cl.SetKernelArg(k.kernelHandle, uint32(argIndex), 16, unsafe.Pointer(&v[0]))
		default:
			return fmt.Errorf(
				"opencl device (%s): could not set arg %d for kernel %s; unsupported arg type: %s",
				k.device.Name,
				argIndex,
				k.name,
				reflect.TypeOf(arg).Name(),
			)
		}

		if errCode != cl.SUCCESS {
			return fmt.Errorf(
				"opencl device (%s): could not set arg %d for kernel %s (error: %s; code %d)",
				k.device.Name,
				argIndex,
				k.name,
				ErrorName(errCode),
				errCode,
			)
		}
	}

	return nil
}

// Execute 1D kernelHandle and block until it completes. If localWorkSize is
// equal to 0 then the opencl implementation will pick the optimal worksize
// split for the underlying hardware; otherwise globalWorkSize must be a
// multiple of localWorkSize.
func (k *Kernel) Exec1D(offset, globalWorkSize, localWorkSize int) (time.Duration, error) {
	var errCode cl.ErrorCode
	var offsetPtr *uint64 = nil
	var localSizePtr *uint64 = nil

	if globalWorkSize <= 0 {
		return 0, fmt.Errorf("opencl device (%s): invalid global work size %d for kernel %s", k.device.Name, globalWorkSize, k.name)
	}

	// Setup work params
	if offset > 0 {
		k.offsets[0] = uint64(offset)
		offsetPtr = &k.offsets[0]
	}
	k.globalWorkSizes[0] = uint64(globalWorkSize)
	if localWorkSize != 0 {
		k.localWorkSizes[0] = uint64(localWorkSize)
		localSizePtr = &k.localWorkSizes[0]
	}

	// Run kernelHandle
	tick := time.Now()
	errCode = cl.EnqueueNDRangeKernel(
		k.device.cmdQueue,
		k.kernelHandle,
		1,
		offsetPtr,
		&k.globalWorkSizes[0],
		localSizePtr,
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return time.Duration(0), fmt.Errorf("opencl device (%s): unable to execute kernel %s (error: %s; code %d)", k.device.Name, k.name, ErrorName(errCode), errCode)
	}

	// Wait for the kernelHandle to complete
	errCode = cl.Finish(k.device.cmdQueue)
	if errCode != cl.SUCCESS {
		return time.Duration(0), fmt.Errorf("opencl device (%s): kernel %s did not complete successfully (error: %s; code %d)", k.device.Name, k.name, ErrorName(errCode), errCode)
	}

	return time.Since(tick), nil
}
