package lbvh

import "fmt"

type kernelType uint8

// The list of kernels that implement the LBVH pipeline.
const (
	// bounds and morton codes
	reduceBoundsPartial kernelType = iota
	reduceBoundsFinal
	computeMortonCodes
	// hierarchy
	lbvhInit
	lbvhHierarchy
	lbvhLinks
	lbvhPropagate
	//
	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source files.
func (kt kernelType) String() string {
	switch kt {
	case reduceBoundsPartial:
		return "reduceBoundsPartial"
	case reduceBoundsFinal:
		return "reduceBoundsFinal"
	case computeMortonCodes:
		return "computeMortonCodes"
	case lbvhInit:
		return "lbvhInit"
	case lbvhHierarchy:
		return "lbvhHierarchy"
	case lbvhLinks:
		return "lbvhLinks"
	case lbvhPropagate:
		return "lbvhPropagate"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}
