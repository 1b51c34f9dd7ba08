package opencl

import "errors"

var (
	ErrNoDevice = errors.New("opencl: invalid device handle")
)
