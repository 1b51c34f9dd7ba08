package lbvh

import (
	"time"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/tracer/opencl"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
	"github.com/achilleasa/lbvh/tracer/opencl/radix"
	"github.com/achilleasa/lbvh/types"
)

// Builder constructs linear BVHs on an opencl device. The produced hierarchy
// matches the host LBVH builder: 2n-1 nodes with the internal nodes stored
// first, followed by one leaf per sorted item.
//
// The node and triangle index buffers of the last build stay resident on the
// device and are also read back into a bvh.Tree for host consumers.
type Builder struct {
	logger log.Logger

	// The associated device. The builder does not own the device.
	device *device.Device

	opts    bvh.Options
	sorter  *radix.Sorter
	kernels []*device.Kernel
	buffers *bufferSet

	// Number of leaves in the last built tree.
	numItems int
}

// Create a new device builder. Only opts.SixSided and opts.Workers are used;
// LBVH trees always store one item per leaf.
func NewBuilder(dev *device.Device, opts bvh.Options) (*Builder, error) {
	err := opencl.InitDevice(dev)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		logger:  log.New("gpu lbvh builder"),
		device:  dev,
		opts:    opts,
		buffers: newBufferSet(dev),
		kernels: make([]*device.Kernel, numKernels),
	}

	b.sorter, err = radix.NewSorter(dev)
	if err != nil {
		b.Close()
		return nil, err
	}

	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		b.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			b.Close()
			return nil, err
		}
	}

	return b, nil
}

// Release all builder resources.
func (b *Builder) Close() {
	if b.sorter != nil {
		b.sorter.Close()
		b.sorter = nil
	}

	if b.buffers != nil {
		b.buffers.Release()
		b.buffers = nil
	}

	if b.kernels != nil {
		for _, kernel := range b.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		b.kernels = nil
	}
}

// Get the device buffer with the node records of the last build.
func (b *Builder) NodeBuffer() *device.Buffer {
	return b.buffers.Nodes
}

// Get the device buffer with the sorted triangle indices of the last build.
func (b *Builder) TriIndexBuffer() *device.Buffer {
	return b.buffers.Indices
}

// Get the number of nodes generated by the last build.
func (b *Builder) NodeCount() int {
	if b.numItems == 0 {
		return 0
	}
	return 2*b.numItems - 1
}

// Build a tree for the given work list. Implements bvh.Builder.
func (b *Builder) Build(workList []bvh.BoundedVolume) (*bvh.Tree, error) {
	count := len(workList)
	b.numItems = 0
	if count == 0 {
		return &bvh.Tree{}, nil
	}
	if count > radix.MaxItems {
		return nil, ErrTooManyItems
	}

	start := time.Now()
	err := b.upload(workList)
	if err != nil {
		return nil, err
	}

	err = b.runPipeline(count)
	if err != nil {
		return nil, err
	}
	b.numItems = count

	tree, err := b.readTree(count)
	if err != nil {
		return nil, err
	}

	if b.opts.SixSided {
		tree.Directional = bvh.LinkDirections(tree)
	}

	b.logger.Debugf(
		"GPU LBVH build time: %d ms, items: %d, nodes: %d",
		time.Since(start).Nanoseconds()/1e6, count, len(tree.Nodes),
	)
	return tree, nil
}

// Upload item centers and boxes.
func (b *Builder) upload(workList []bvh.BoundedVolume) error {
	count := len(workList)
	err := b.buffers.Reserve(count)
	if err != nil {
		return err
	}

	centers := make([]types.Vec4, count)
	boxes := make([]types.Vec4, 2*count)
	for index, item := range workList {
		box := item.BBox()
		centers[index] = item.Center().Vec4(0)
		boxes[2*index] = box.Min.Vec4(0)
		boxes[2*index+1] = box.Max.Vec4(0)
	}

	err = b.buffers.Centers.WriteData(centers, 0)
	if err != nil {
		return err
	}
	return b.buffers.Boxes.WriteData(boxes, 0)
}

// Run all build stages. Each dispatch blocks until the kernel completes.
func (b *Builder) runPipeline(count int) error {
	var err error
	var elapsed, totalTime time.Duration

	bs := b.buffers
	numBlocks := (count + radix.BlockSize - 1) / radix.BlockSize
	localVec4 := device.LocalMem(radix.BlockSize * sizeofVec4)
	items := opencl.RoundUp(count, radix.BlockSize)

	mortonStages := []struct {
		kernel     kernelType
		args       []interface{}
		globalSize int
	}{
		{reduceBoundsPartial, []interface{}{bs.Centers, uint32(count), bs.PartialMin, bs.PartialMax, localVec4, localVec4}, items},
		{reduceBoundsFinal, []interface{}{bs.PartialMin, bs.PartialMax, uint32(numBlocks), bs.Bounds, localVec4, localVec4}, radix.BlockSize},
		{computeMortonCodes, []interface{}{bs.Centers, uint32(count), bs.Bounds, bs.Codes, bs.Indices}, items},
	}
	for _, stage := range mortonStages {
		elapsed, err = b.exec(stage.kernel, stage.globalSize, stage.args...)
		if err != nil {
			return err
		}
		totalTime += elapsed
	}

	err = b.sorter.Sort(bs.Codes, bs.Indices, count)
	if err != nil {
		return err
	}

	hierarchyStages := []struct {
		kernel     kernelType
		args       []interface{}
		globalSize int
	}{
		{lbvhInit, []interface{}{bs.Nodes, bs.Parents, bs.Counters, bs.Boxes, bs.Indices, uint32(count)}, items},
		{lbvhHierarchy, []interface{}{bs.Codes, uint32(count), bs.Parents, bs.Children}, opencl.RoundUp(count-1, radix.BlockSize)},
		{lbvhLinks, []interface{}{bs.Nodes, bs.Parents, bs.Children, uint32(count)}, opencl.RoundUp(2*count-1, radix.BlockSize)},
		{lbvhPropagate, []interface{}{bs.Nodes, bs.Parents, bs.Children, bs.Counters, uint32(count)}, items},
	}
	for _, stage := range hierarchyStages {
		// A single item tree only needs its leaf record.
		if count == 1 && stage.kernel != lbvhInit {
			continue
		}
		elapsed, err = b.exec(stage.kernel, stage.globalSize, stage.args...)
		if err != nil {
			return err
		}
		totalTime += elapsed
	}

	b.logger.Debugf("kernel time (excluding sort): %d ms", totalTime.Nanoseconds()/1e6)
	return nil
}

func (b *Builder) exec(kType kernelType, globalSize int, args ...interface{}) (time.Duration, error) {
	kernel := b.kernels[kType]
	err := kernel.SetArgs(args...)
	if err != nil {
		return 0, err
	}
	return kernel.Exec1D(0, globalSize, radix.BlockSize)
}

// Read back the node and triangle index buffers.
func (b *Builder) readTree(count int) (*bvh.Tree, error) {
	nodes := make([]scene.BvhNode, 2*count-1)
	err := b.buffers.Nodes.ReadData(0, 0, len(nodes)*sizeofBvhNode, nodes)
	if err != nil {
		return nil, err
	}

	triIndices := make([]uint32, count)
	err = b.buffers.Indices.ReadData(0, 0, count*sizeofUint, triIndices)
	if err != nil {
		return nil, err
	}

	return scene.DecodeTree(nodes, triIndices, nil)
}
