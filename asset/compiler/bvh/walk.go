package bvh

// Walk performs a stackless traversal over the primary links. The test
// callback decides whether a node box is entered (HitNext) or skipped
// (MissNext). The leaf callback receives the index of every entered leaf and
// may stop the traversal by returning false.
func (t *Tree) Walk(test func(box AABB) bool, leaf func(nodeIndex int) bool) {
	if t.Len() == 0 {
		return
	}
	walk(t.Nodes, func(i int) (int, int) {
		return t.Nodes[i].HitNext, t.Nodes[i].MissNext
	}, test, leaf)
}

// WalkDirection is like Walk but follows the traversal order generated for
// dir. If the tree has no directional links the primary links are used.
func (t *Tree) WalkDirection(dir Direction, test func(box AABB) bool, leaf func(nodeIndex int) bool) {
	if t.Directional == nil || dir >= NumDirections {
		t.Walk(test, leaf)
		return
	}
	if t.Len() == 0 {
		return
	}

	links := t.Directional[dir]
	walk(t.Nodes, func(i int) (int, int) {
		return links[i].Hit, links[i].Miss
	}, test, leaf)
}

func walk(nodes []Node, next func(int) (int, int), test func(AABB) bool, leaf func(int) bool) {
	for cur := 0; cur != -1; {
		hit, miss := next(cur)
		if !test(nodes[cur].Box) {
			cur = miss
			continue
		}
		if nodes[cur].Leaf && !leaf(cur) {
			return
		}
		cur = hit
	}
}

// Overlapping returns the original indices of all items stored in leaves
// whose box overlaps the query box.
func (t *Tree) Overlapping(box AABB) []int {
	var out []int
	t.Walk(
		func(nodeBox AABB) bool { return nodeBox.Overlaps(box) },
		func(nodeIndex int) bool {
			out = append(out, t.LeafItems(nodeIndex)...)
			return true
		},
	)
	return out
}
