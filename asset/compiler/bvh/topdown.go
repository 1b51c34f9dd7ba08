package bvh

import (
	"math"
	"math/bits"
	"sort"
	"time"

	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Shared state for a single top-down build.
type buildContext struct {
	boxes   []AABB
	centers []types.Vec3

	// Sorted position -> item index. Splitters reorder it in place so that
	// every node addresses a contiguous range.
	perm []int

	// Morton codes by sorted position; only populated by the morton splitter.
	codes []uint32
}

// Get the union of item boxes in [start, end).
func (ctx *buildContext) rangeBounds(start, end int) AABB {
	box := EmptyAABB()
	for _, item := range ctx.perm[start:end] {
		box = Union(box, ctx.boxes[item])
	}
	return box
}

// Get the bounds of item centers in [start, end).
func (ctx *buildContext) centroidBounds(start, end int) AABB {
	box := EmptyAABB()
	for _, item := range ctx.perm[start:end] {
		box = box.Grow(ctx.centers[item])
	}
	return box
}

// Sort [start, end) by item center along axis. Equal centers keep item order
// so repeated builds produce identical trees.
func (ctx *buildContext) sortRange(start, end int, axis Axis) {
	sub := ctx.perm[start:end]
	sort.Slice(sub, func(i, j int) bool {
		ci, cj := ctx.centers[sub[i]][axis], ctx.centers[sub[j]][axis]
		if ci != cj {
			return ci < cj
		}
		return sub[i] < sub[j]
	})
}

// A split selection strategy for the top-down builder.
type splitter interface {
	// Called once per build before any split is requested.
	prepare(ctx *buildContext, workers int)

	// Partition [start, end) and return the index of the first item of the
	// right child. The range always contains at least two items and the
	// returned index must lie in [start+1, end-1].
	split(ctx *buildContext, start, end int) int
}

// Force a split index inside [start+1, end-1]. If the candidate leaves
// one side empty the range is split at its midpoint instead.
func clampSplit(mid, start, end int) int {
	if mid <= start || mid >= end {
		return start + (end-start)/2
	}
	return mid
}

// A pending node of the top-down construction worklist.
type workItem struct {
	node       int
	start, end int
	next       int
	parent     int
	depth      int
}

type topDownBuilder struct {
	logger   log.Logger
	opts     Options
	splitter splitter
}

func newTopDownBuilder(opts Options, s splitter) *topDownBuilder {
	return &topDownBuilder{
		logger:   log.New("bvh builder"),
		opts:     opts,
		splitter: s,
	}
}

// Build a tree by recursively partitioning the work list. An explicit
// worklist replaces recursion so deep trees do not grow the goroutine stack.
func (b *topDownBuilder) Build(workList []BoundedVolume) (*Tree, error) {
	tree := &Tree{}
	if len(workList) == 0 {
		return tree, nil
	}

	start := time.Now()
	boxes, centers := collectBounds(workList)
	ctx := &buildContext{
		boxes:   boxes,
		centers: centers,
		perm:    identityPermutation(len(workList)),
	}
	b.splitter.prepare(ctx, b.opts.Workers)

	nodes := make([]Node, 1, 2*len(workList)-1)
	stack := []workItem{{node: 0, start: 0, end: len(workList), next: -1, parent: -1}}
	maxDepth := 0
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if w.depth > maxDepth {
			maxDepth = w.depth
		}

		box := ctx.rangeBounds(w.start, w.end)
		if w.end-w.start <= b.opts.MaxLeafSize {
			nodes[w.node] = newLeaf(box, w.start, w.end-w.start, w.next)
			nodes[w.node].Parent = w.parent
			continue
		}

		mid := b.splitter.split(ctx, w.start, w.end)
		left := len(nodes)
		right := left + 1
		nodes = append(nodes, Node{}, Node{})
		nodes[w.node] = Node{
			Box:      box,
			Left:     left,
			Right:    right,
			Parent:   w.parent,
			HitNext:  left,
			MissNext: w.next,
		}

		// The left subtree continues into its sibling; the right subtree
		// continues wherever this node would.
		stack = append(stack,
			workItem{node: right, start: mid, end: w.end, next: w.next, parent: w.node, depth: w.depth + 1},
			workItem{node: left, start: w.start, end: mid, next: right, parent: w.node, depth: w.depth + 1},
		)
	}

	tree.Nodes = nodes
	tree.TriIndices = ctx.perm
	if b.opts.SixSided {
		tree.Directional = LinkDirections(tree)
	}

	b.logger.Debugf(
		"%s BVH build time: %d ms, items: %d, nodes: %d, maxDepth: %d",
		b.opts.Strategy, time.Since(start).Nanoseconds()/1e6, len(workList), len(nodes), maxDepth,
	)
	return tree, nil
}

// Splits at the midpoint of the longest centroid axis.
type medianSplitter struct{}

func (medianSplitter) prepare(*buildContext, int) {}

func (medianSplitter) split(ctx *buildContext, start, end int) int {
	cb := ctx.centroidBounds(start, end)
	axis := cb.LongestAxis()
	splitPos := (cb.Min[axis] + cb.Max[axis]) * 0.5

	ctx.sortRange(start, end, axis)
	mid := start
	for mid < end && ctx.centers[ctx.perm[mid]][axis] < splitPos {
		mid++
	}
	return clampSplit(mid, start, end)
}

// Evaluates every split position along the longest centroid axis and picks
// the one with the lowest surface area heuristic cost:
//
// left count * left box area + right count * right box area.
type sahSplitter struct{}

func (sahSplitter) prepare(*buildContext, int) {}

func (sahSplitter) split(ctx *buildContext, start, end int) int {
	axis := ctx.centroidBounds(start, end).LongestAxis()
	ctx.sortRange(start, end, axis)

	count := end - start

	// rightArea[i] holds the area of items [start+i, end)
	rightArea := make([]float32, count)
	acc := EmptyAABB()
	for i := count - 1; i >= 1; i-- {
		acc = Union(acc, ctx.boxes[ctx.perm[start+i]])
		rightArea[i] = acc.SurfaceArea()
	}

	best := start + 1
	bestCost := float32(math.MaxFloat32)
	acc = EmptyAABB()
	for i := 1; i < count; i++ {
		acc = Union(acc, ctx.boxes[ctx.perm[start+i-1]])
		cost := float32(i)*acc.SurfaceArea() + float32(count-i)*rightArea[i]
		if cost < bestCost {
			bestCost = cost
			best = start + i
		}
	}
	return best
}

// Sorts the work list by morton code and splits ranges at the highest bit
// where the first and last codes of the range differ.
type mortonSplitter struct{}

func (mortonSplitter) prepare(ctx *buildContext, workers int) {
	ctx.codes = MortonCodes(ctx.centers, workers)
	RadixSortPairs(ctx.codes, ctx.perm)
}

func (mortonSplitter) split(ctx *buildContext, start, end int) int {
	first, last := ctx.codes[start], ctx.codes[end-1]
	if first == last {
		return start + (end-start)/2
	}

	// Codes are sorted so everything with the split bit cleared forms a
	// prefix of the range.
	splitBit := uint(31 - bits.LeadingZeros32(first^last))
	prefix := first >> splitBit
	mid := start + sort.Search(end-start, func(i int) bool {
		return ctx.codes[start+i]>>splitBit != prefix
	})
	return clampSplit(mid, start, end)
}
