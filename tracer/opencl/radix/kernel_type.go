package radix

import "fmt"

type kernelType uint8

// The list of kernels that implement the radix sort.
const (
	radixCount kernelType = iota
	scanBlocks
	scanBlockSums
	addBlockOffsets
	radixReorder
	//
	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source files.
func (kt kernelType) String() string {
	switch kt {
	case radixCount:
		return "radixCount"
	case scanBlocks:
		return "scanBlocks"
	case scanBlockSums:
		return "scanBlockSums"
	case addBlockOffsets:
		return "addBlockOffsets"
	case radixReorder:
		return "radixReorder"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}
