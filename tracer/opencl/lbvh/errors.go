package lbvh

import (
	"github.com/achilleasa/lbvh/tracer/opencl"
	"github.com/achilleasa/lbvh/tracer/opencl/radix"
)

var (
	ErrNoDevice     = opencl.ErrNoDevice
	ErrTooManyItems = radix.ErrTooManyItems
)
