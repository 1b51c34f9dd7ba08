package scene

import (
	"fmt"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
)

// MaxTriangles is the largest triangle index list that can be encoded. Leaf
// offsets and counts are stored as floats which represent every integer up
// to 2^24 exactly.
const MaxTriangles = 1 << 24

var ErrTooManyTriangles = fmt.Errorf("scene: triangle index lists are limited to %d entries", MaxTriangles)

func checkTriangleCount(count int) error {
	if count > MaxTriangles {
		return ErrTooManyTriangles
	}
	return nil
}

// EncodeTree converts a tree into the device node and triangle index layout.
func EncodeTree(tree *bvh.Tree) ([]BvhNode, []uint32, error) {
	numTris := len(tree.TriIndices)
	if err := checkTriangleCount(numTris); err != nil {
		return nil, nil, err
	}

	nodes := make([]BvhNode, tree.Len())
	for index, n := range tree.Nodes {
		wn := &nodes[index]
		wn.SetBBox(n.Box)
		wn.SetLinks(int32(n.HitNext), int32(n.MissNext))
		if n.Leaf {
			if n.First < 0 || n.Count < 0 || n.First+n.Count > numTris {
				return nil, nil, fmt.Errorf("encode tree: leaf %d covers triangles [%d, %d) outside the %d entry index list", index, n.First, n.First+n.Count, numTris)
			}
			wn.SetTriangles(uint32(n.First), uint32(n.Count))
		}
	}

	triIndices := make([]uint32, numTris)
	for pos, index := range tree.TriIndices {
		triIndices[pos] = uint32(index)
	}
	return nodes, triIndices, nil
}

// EncodeDirectionalLinks converts the six directional link sets of a tree.
// It returns nil if the tree has none.
func EncodeDirectionalLinks(tree *bvh.Tree) [][]DirectionalLink {
	if tree.Directional == nil {
		return nil
	}

	out := make([][]DirectionalLink, bvh.NumDirections)
	for dir, links := range tree.Directional {
		out[dir] = make([]DirectionalLink, len(links))
		for index, l := range links {
			out[dir][index] = DirectionalLink{Hit: int32(l.Hit), Miss: int32(l.Miss)}
		}
	}
	return out
}

// DecodeTree rebuilds a tree from device records. The wire format does not
// store child indices; the left child of an internal node is its hit link
// and the right child is the miss link of the left child. Records that do
// not describe a single tree rooted at node 0 are rejected.
func DecodeTree(nodes []BvhNode, triIndices []uint32, links [][]DirectionalLink) (*bvh.Tree, error) {
	if err := checkTriangleCount(len(triIndices)); err != nil {
		return nil, err
	}

	tree := &bvh.Tree{
		Nodes:      make([]bvh.Node, len(nodes)),
		TriIndices: make([]int, len(triIndices)),
	}
	for pos, index := range triIndices {
		tree.TriIndices[pos] = int(index)
	}

	numNodes := int32(len(nodes))
	for index := range nodes {
		tree.Nodes[index].Parent = -1
	}
	for index := range nodes {
		wn := &nodes[index]
		hit, miss := wn.GetLinks()
		if hit < -1 || hit >= numNodes || miss < -1 || miss >= numNodes {
			return nil, fmt.Errorf("decode tree: node %d has out of range links (%d, %d)", index, hit, miss)
		}

		n := &tree.Nodes[index]
		n.Box = wn.BBox()
		n.HitNext = int(hit)
		n.MissNext = int(miss)
		n.Left, n.Right = -1, -1

		if wn.IsLeaf() {
			first, count := wn.GetTriangles()
			if int(first)+int(count) > len(triIndices) {
				return nil, fmt.Errorf("decode tree: leaf %d covers triangles [%d, %d) outside the %d entry index list", index, first, first+count, len(triIndices))
			}
			n.Leaf = true
			n.First = int(first)
			n.Count = int(count)
			continue
		}

		if hit <= 0 {
			return nil, fmt.Errorf("decode tree: internal node %d has invalid hit link %d", index, hit)
		}
		_, right := nodes[hit].GetLinks()
		if right <= 0 || right >= numNodes || right == hit {
			return nil, fmt.Errorf("decode tree: internal node %d has invalid right child %d", index, right)
		}
		n.Left = int(hit)
		n.Right = int(right)
	}

	// Children never point back at the root and every other node has
	// exactly one parent so walks from the root always terminate.
	for index := range tree.Nodes {
		n := &tree.Nodes[index]
		if n.Leaf {
			continue
		}
		for _, child := range [2]int{n.Left, n.Right} {
			if tree.Nodes[child].Parent != -1 {
				return nil, fmt.Errorf("decode tree: node %d is a child of both node %d and node %d", child, tree.Nodes[child].Parent, index)
			}
			tree.Nodes[child].Parent = index
		}
	}
	if reached := countReachable(tree); reached != len(nodes) {
		return nil, fmt.Errorf("decode tree: only %d of %d nodes are reachable from the root", reached, len(nodes))
	}

	if len(links) == 0 {
		return tree, nil
	}
	if len(links) != int(bvh.NumDirections) {
		return nil, fmt.Errorf("decode tree: expected %d directional link sets; got %d", bvh.NumDirections, len(links))
	}

	tree.Directional = &bvh.DirectionalLinks{}
	for dir, dirLinks := range links {
		if len(dirLinks) != len(nodes) {
			return nil, fmt.Errorf("decode tree: %s links: expected %d entries; got %d", bvh.Direction(dir), len(nodes), len(dirLinks))
		}
		out := make([]bvh.Link, len(dirLinks))
		for index, l := range dirLinks {
			out[index] = bvh.Link{Hit: int(l.Hit), Miss: int(l.Miss)}
		}
		tree.Directional[dir] = out
	}
	return tree, nil
}

// Count the nodes of a decoded tree reachable from its root. Callers must
// ensure that no node has more than one parent and the root has none.
func countReachable(tree *bvh.Tree) int {
	if len(tree.Nodes) == 0 {
		return 0
	}

	reached := 0
	stack := []int{0}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++

		n := &tree.Nodes[index]
		if !n.Leaf {
			stack = append(stack, n.Left, n.Right)
		}
	}
	return reached
}

// Tree decodes the BVH stored in the scene.
func (sc *Scene) Tree() (*bvh.Tree, error) {
	return DecodeTree(sc.BvhNodeList, sc.TriIndexList, sc.DirectionalLinks)
}
