package bvh

import (
	"math/bits"
	"time"

	"github.com/achilleasa/lbvh/log"
	"go.uber.org/atomic"
)

// Builds a linear BVH from sorted morton codes using the algorithm described
// in "Maximizing Parallelism in the Construction of BVHs, Octrees, and k-d
// Trees" (Karras, 2012).
//
// For n items the builder allocates 2n-1 nodes: internal nodes occupy
// [0, n-2] and leaves occupy [n-1, 2n-2] with one leaf per sorted item. Every
// phase runs as a parallel loop over a fixed index range.
type lbvhBuilder struct {
	logger log.Logger
	opts   Options
}

func newLBVHBuilder(opts Options) *lbvhBuilder {
	return &lbvhBuilder{
		logger: log.New("lbvh builder"),
		opts:   opts,
	}
}

func (b *lbvhBuilder) Build(workList []BoundedVolume) (*Tree, error) {
	tree := &Tree{}
	n := len(workList)
	if n == 0 {
		return tree, nil
	}

	start := time.Now()
	boxes, centers := collectBounds(workList)
	codes := MortonCodes(centers, b.opts.Workers)
	perm := identityPermutation(n)
	RadixSortPairs(codes, perm)
	tree.TriIndices = perm

	if n == 1 {
		tree.Nodes = []Node{newLeaf(boxes[perm[0]], 0, 1, -1)}
	} else {
		tree.Nodes = b.link(codes, perm, boxes)
	}

	if b.opts.SixSided {
		tree.Directional = LinkDirections(tree)
	}

	b.logger.Debugf(
		"LBVH build time: %d ms, items: %d, nodes: %d",
		time.Since(start).Nanoseconds()/1e6, n, len(tree.Nodes),
	)
	return tree, nil
}

// Generate the hierarchy, threading links and bounding boxes for n >= 2
// sorted items.
func (b *lbvhBuilder) link(codes []uint32, perm []int, boxes []AABB) []Node {
	n := len(codes)
	leafBase := n - 1
	nodes := make([]Node, 2*n-1)
	workers := b.opts.Workers

	parallelFor(n, workers, func(k int) {
		nodes[leafBase+k] = newLeaf(boxes[perm[k]], k, 1, -1)
	})

	// Internal node i only writes its own child links and the parent link
	// of its two children, so iterations never touch the same field.
	parallelFor(n-1, workers, func(i int) {
		left, right := karrasChildren(codes, i)
		nodes[i].Left = left
		nodes[i].Right = right
		nodes[left].Parent = i
		nodes[right].Parent = i
	})
	nodes[0].Parent = -1

	parallelFor(len(nodes), workers, func(i int) {
		miss := missLink(nodes, i)
		nodes[i].MissNext = miss
		if nodes[i].Leaf {
			nodes[i].HitNext = miss
		} else {
			nodes[i].HitNext = nodes[i].Left
		}
	})

	// Bottom-up box propagation. Each leaf walks towards the root and the
	// second child to arrive at a node computes its box and keeps climbing;
	// the first one stops. Every internal box is thus computed exactly once
	// after both child boxes are available.
	arrivals := make([]atomic.Int32, n-1)
	parallelFor(n, workers, func(k int) {
		cur := nodes[leafBase+k].Parent
		for cur != -1 {
			if arrivals[cur].Inc() == 1 {
				return
			}
			nodes[cur].Box = Union(nodes[nodes[cur].Left].Box, nodes[nodes[cur].Right].Box)
			cur = nodes[cur].Parent
		}
	})

	return nodes
}

// Get the length of the common prefix of the keys at positions a and b. Keys
// are augmented with their position so duplicates still yield distinct
// prefixes. Positions outside the key list return -1.
func commonPrefix(codes []uint32, a, b int) int {
	if b < 0 || b >= len(codes) {
		return -1
	}
	ca, cb := codes[a], codes[b]
	if ca == cb {
		return 32 + bits.LeadingZeros32(uint32(a^b))
	}
	return bits.LeadingZeros32(ca ^ cb)
}

// Find the node indices of the two children of internal node i.
func karrasChildren(codes []uint32, i int) (left, right int) {
	leafBase := len(codes) - 1

	// Direction of the range covered by i.
	d := 1
	if commonPrefix(codes, i, i+1) < commonPrefix(codes, i, i-1) {
		d = -1
	}

	// Upper bound for the range length.
	minPrefix := commonPrefix(codes, i, i-d)
	lMax := 2
	for commonPrefix(codes, i, i+lMax*d) > minPrefix {
		lMax *= 2
	}

	// Binary search for the other end.
	l := 0
	for t := lMax / 2; t >= 1; t /= 2 {
		if commonPrefix(codes, i, i+(l+t)*d) > minPrefix {
			l += t
		}
	}
	j := i + l*d

	// Binary search for the split position.
	nodePrefix := commonPrefix(codes, i, j)
	s := 0
	for div := 2; ; div *= 2 {
		t := (l + div - 1) / div
		if commonPrefix(codes, i, i+(s+t)*d) > nodePrefix {
			s += t
		}
		if t <= 1 {
			break
		}
	}
	gamma := i + s*d + min(d, 0)

	lo, hi := min(i, j), max(i, j)
	left, right = gamma, gamma+1
	if lo == gamma {
		left += leafBase
	}
	if hi == gamma+1 {
		right += leafBase
	}
	return left, right
}

// Get the node visited after the subtree rooted at i: the right sibling of
// the closest ancestor (or i itself) that is a left child.
func missLink(nodes []Node, i int) int {
	cur := i
	for {
		p := nodes[cur].Parent
		if p == -1 {
			return -1
		}
		if nodes[p].Left == cur {
			return nodes[p].Right
		}
		cur = p
	}
}
