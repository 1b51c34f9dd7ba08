package bvh

import (
	"fmt"

	"go.uber.org/multierr"
)

// Stop collecting violations after this many.
const maxReportedViolations = 64

type violations struct {
	err   error
	count int
}

func (v *violations) add(format string, args ...interface{}) {
	v.count++
	if v.count <= maxReportedViolations {
		v.err = multierr.Append(v.err, fmt.Errorf(format, args...))
	}
}

// Validate checks the structural invariants of a tree built from workList:
//
//   - every item is stored in exactly one leaf
//   - node boxes contain their children or their items
//   - an always-hit walk from the root visits every leaf exactly once and
//     terminates
//   - following miss links from any node only moves forward in the walk
//     order and terminates
//
// Directional links, when present, are checked with the same walk rules.
// All detected violations are combined into the returned error.
func (t *Tree) Validate(workList []BoundedVolume) error {
	v := &violations{}

	if len(workList) == 0 {
		if t.Len() != 0 {
			v.add("expected empty tree for empty work list; got %d nodes", t.Len())
		}
		return v.err
	}
	if t.Len() == 0 {
		v.add("expected non-empty tree for %d items", len(workList))
		return v.err
	}
	if len(t.TriIndices) != len(workList) {
		v.add("expected %d triangle indices; got %d", len(workList), len(t.TriIndices))
		return v.err
	}

	t.checkPermutation(v)
	t.checkNodes(workList, v)
	if v.err != nil {
		// Walks over a broken structure may not terminate.
		return v.err
	}

	t.checkWalk("primary", func(i int) (int, int) {
		return t.Nodes[i].HitNext, t.Nodes[i].MissNext
	}, v)

	if t.Directional != nil {
		for dir := PosX; dir < NumDirections; dir++ {
			links := t.Directional[dir]
			if len(links) != len(t.Nodes) {
				v.add("%s links: expected %d entries; got %d", dir, len(t.Nodes), len(links))
				continue
			}
			t.checkWalk(dir.String(), func(i int) (int, int) {
				return links[i].Hit, links[i].Miss
			}, v)
		}
	}

	if v.count > maxReportedViolations {
		v.err = multierr.Append(v.err, fmt.Errorf("%d additional violations omitted", v.count-maxReportedViolations))
	}
	return v.err
}

func (t *Tree) checkPermutation(v *violations) {
	seen := make([]bool, len(t.TriIndices))
	for pos, item := range t.TriIndices {
		if item < 0 || item >= len(seen) {
			v.add("triangle index at position %d out of range: %d", pos, item)
			continue
		}
		if seen[item] {
			v.add("triangle %d appears more than once in the index permutation", item)
		}
		seen[item] = true
	}
}

func (t *Tree) checkNodes(workList []BoundedVolume, v *violations) {
	numNodes := len(t.Nodes)
	covered := make([]int, len(t.TriIndices))
	inRange := func(i int) bool { return i >= -1 && i < numNodes }

	for i := range t.Nodes {
		n := &t.Nodes[i]
		if !inRange(n.HitNext) || !inRange(n.MissNext) {
			v.add("node %d: traversal links out of range (hit %d, miss %d)", i, n.HitNext, n.MissNext)
			continue
		}

		if n.Leaf {
			if n.Count < 1 || n.First < 0 || n.First+n.Count > len(t.TriIndices) {
				v.add("leaf %d: invalid item range [%d, %d)", i, n.First, n.First+n.Count)
				continue
			}
			if n.HitNext != n.MissNext {
				v.add("leaf %d: expected hit link %d to equal miss link %d", i, n.HitNext, n.MissNext)
			}
			for pos := n.First; pos < n.First+n.Count; pos++ {
				covered[pos]++
				item := t.TriIndices[pos]
				if item >= 0 && item < len(workList) && !n.Box.Contains(workList[item].BBox()) {
					v.add("leaf %d: box does not contain item %d", i, item)
				}
			}
			continue
		}

		if n.Left <= 0 || n.Left >= numNodes || n.Right <= 0 || n.Right >= numNodes || n.Left == n.Right {
			v.add("node %d: invalid children (%d, %d)", i, n.Left, n.Right)
			continue
		}
		if n.HitNext != n.Left {
			v.add("node %d: expected hit link to point to left child %d; got %d", i, n.Left, n.HitNext)
		}
		for _, child := range []int{n.Left, n.Right} {
			if t.Nodes[child].Parent != i {
				v.add("node %d: child %d has parent %d", i, child, t.Nodes[child].Parent)
			}
			if !n.Box.Contains(t.Nodes[child].Box) {
				v.add("node %d: box does not contain child %d", i, child)
			}
		}
	}

	if t.Nodes[0].Parent != -1 {
		v.add("root: expected no parent; got %d", t.Nodes[0].Parent)
	}

	for pos, count := range covered {
		if count != 1 {
			v.add("item at position %d is covered by %d leaves", pos, count)
		}
	}
}

// Simulate an always-hit walk and always-miss walks for one link set.
func (t *Tree) checkWalk(name string, next func(int) (int, int), v *violations) {
	numNodes := len(t.Nodes)
	order := make([]int, numNodes)
	for i := range order {
		order[i] = -1
	}

	leaves := 0
	steps := 0
	for cur := 0; cur != -1; steps++ {
		if steps >= numNodes || order[cur] != -1 {
			v.add("%s walk: node %d visited twice or walk does not terminate", name, cur)
			return
		}
		order[cur] = steps
		if t.Nodes[cur].Leaf {
			leaves++
		}
		cur, _ = next(cur)
	}

	if steps != numNodes {
		v.add("%s walk: visited %d of %d nodes", name, steps, numNodes)
	}
	expLeaves := 0
	for i := range t.Nodes {
		if t.Nodes[i].Leaf {
			expLeaves++
		}
	}
	if leaves != expLeaves {
		v.add("%s walk: visited %d of %d leaves", name, leaves, expLeaves)
	}

	// Miss links strictly advancing in walk order guarantees that every
	// miss chain terminates without revisiting nodes.
	for i := range t.Nodes {
		if order[i] == -1 {
			continue
		}
		if _, miss := next(i); miss != -1 && order[miss] <= order[i] {
			v.add("%s walk: miss link of node %d moves backwards to node %d", name, i, miss)
		}
	}
}
