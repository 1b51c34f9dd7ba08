package opencl

import (
	"path"
	"runtime"

	"github.com/achilleasa/lbvh/tracer/opencl/device"
)

const (
	relativePathToMainProgram = "CL/main.cl"
)

// Get the path to the CL program that includes every kernel used by the
// device builders.
func MainProgramPath() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(thisFile), relativePathToMainProgram)
}

// Initialize dev with the main program. Initializing an already initialized
// device is a no-op so the same device can be shared by several consumers.
func InitDevice(dev *device.Device) error {
	if dev == nil {
		return ErrNoDevice
	}
	return dev.Init(MainProgramPath())
}

// Round n up to the nearest multiple of blockSize.
func RoundUp(n, blockSize int) int {
	return ((n + blockSize - 1) / blockSize) * blockSize
}
