package bvh

import (
	"fmt"

	"github.com/achilleasa/lbvh/types"
)

// Direction identifies one of the six major axis directions.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
	//
	NumDirections
)

// Get the axis of the direction.
func (d Direction) Axis() Axis {
	return Axis(d / 2)
}

// Returns true if the direction points towards increasing coordinates.
func (d Direction) Positive() bool {
	return d%2 == 0
}

// Implements Stringer.
func (d Direction) String() string {
	if d >= NumDirections {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	sign := "+"
	if !d.Positive() {
		sign = "-"
	}
	return sign + string("XYZ"[d.Axis()])
}

// Select the direction whose traversal order best matches a ray direction.
func DirectionFor(rayDir types.Vec3) Direction {
	axis := rayDir.MaxAbsAxis()
	dir := Direction(axis * 2)
	if rayDir[axis] < 0 {
		dir++
	}
	return dir
}

// A hit/miss link pair.
type Link struct {
	Hit, Miss int
}

// DirectionalLinks holds one set of traversal links per direction. Each set
// is parallel to Tree.Nodes.
type DirectionalLinks [NumDirections][]Link

// LinkDirections derives a front-to-back traversal order for each of the six
// major directions. At every internal node the child closer to the origin
// of a ray travelling in that direction is visited first. The primary
// traversal links of the tree are left untouched.
func LinkDirections(tree *Tree) *DirectionalLinks {
	links := &DirectionalLinks{}
	if tree.Len() == 0 {
		return links
	}

	type pending struct {
		node, next int
	}

	for dir := PosX; dir < NumDirections; dir++ {
		out := make([]Link, len(tree.Nodes))
		axis := dir.Axis()
		positive := dir.Positive()

		stack := []pending{{node: 0, next: -1}}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			node := &tree.Nodes[p.node]
			if node.Leaf {
				out[p.node] = Link{Hit: p.next, Miss: p.next}
				continue
			}

			near, far := node.Left, node.Right
			if nearerFirst(tree.Nodes[far].Box, tree.Nodes[near].Box, axis, positive) {
				near, far = far, near
			}

			out[p.node] = Link{Hit: near, Miss: p.next}
			stack = append(stack,
				pending{node: far, next: p.next},
				pending{node: near, next: far},
			)
		}
		links[dir] = out
	}

	return links
}

// Returns true if box a should be visited strictly before box b.
func nearerFirst(a, b AABB, axis Axis, positive bool) bool {
	if positive {
		return a.Min[axis] < b.Min[axis]
	}
	return a.Max[axis] > b.Max[axis]
}
