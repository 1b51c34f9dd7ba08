package bvh

import "github.com/achilleasa/lbvh/types"

// Axis selects a coordinate axis.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// The BoundedVolume interface is implemented by all primitives that can be
// partitioned by the bvh builders.
type BoundedVolume interface {
	BBox() AABB
	Center() types.Vec3
}

// A node in the flattened hierarchy. All relationships are expressed as
// indices into Tree.Nodes; -1 marks an absent link.
type Node struct {
	Box AABB

	// Child node indices; -1 for leaves.
	Left, Right int

	// Parent node index; -1 for the root.
	Parent int

	Leaf bool

	// Leaf contents as a range into Tree.TriIndices. Only valid for leaves.
	First, Count int

	// Stackless traversal links. HitNext is followed when the node box is
	// intersected and MissNext when it is not. A value of -1 terminates
	// the traversal.
	HitNext, MissNext int
}

// Tree is a flattened bounding volume hierarchy. The root, if any, is at index 0.
type Tree struct {
	Nodes []Node

	// Maps a sorted triangle position (as referenced by leaf ranges) to the
	// index of the triangle in the list passed to the builder.
	TriIndices []int

	// Alternative traversal orders; nil unless requested at build time.
	Directional *DirectionalLinks
}

// Get the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Get the bounding box of the whole tree.
func (t *Tree) Bounds() AABB {
	if t.Len() == 0 {
		return EmptyAABB()
	}
	return t.Nodes[0].Box
}

// Get the original triangle indices stored in a leaf.
func (t *Tree) LeafItems(nodeIndex int) []int {
	n := &t.Nodes[nodeIndex]
	if !n.Leaf {
		return nil
	}
	return t.TriIndices[n.First : n.First+n.Count]
}

func newLeaf(box AABB, first, count, next int) Node {
	return Node{
		Box:      box,
		Left:     -1,
		Right:    -1,
		Parent:   -1,
		Leaf:     true,
		First:    first,
		Count:    count,
		HitNext:  next,
		MissNext: next,
	}
}

// Collect boxes and centers from a work list so builders do not need to go
// through the interface in their inner loops.
func collectBounds(items []BoundedVolume) (boxes []AABB, centers []types.Vec3) {
	boxes = make([]AABB, len(items))
	centers = make([]types.Vec3, len(items))
	for i, item := range items {
		boxes[i] = item.BBox()
		centers[i] = item.Center()
	}
	return boxes, centers
}

func identityPermutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
