package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/lbvh/types"
)

type testItem struct {
	box    AABB
	center types.Vec3
}

func (ti testItem) BBox() AABB         { return ti.box }
func (ti testItem) Center() types.Vec3 { return ti.center }

// Create an item centered at c whose box extends by halfSize on every axis.
func itemAt(c types.Vec3, halfSize float32) testItem {
	h := types.Splat(halfSize)
	return testItem{
		box:    AABB{Min: c.Sub(h), Max: c.Add(h)},
		center: c,
	}
}

func randomItems(seed int64, count int) []BoundedVolume {
	rng := rand.New(rand.NewSource(seed))
	items := make([]BoundedVolume, count)
	for i := range items {
		c := types.Vec3{
			rng.Float32()*20 - 10,
			rng.Float32()*20 - 10,
			rng.Float32()*20 - 10,
		}
		items[i] = itemAt(c, rng.Float32())
	}
	return items
}

func pointItems(points ...types.Vec3) []BoundedVolume {
	items := make([]BoundedVolume, len(points))
	for i, p := range points {
		items[i] = itemAt(p, 0)
	}
	return items
}

var allStrategies = []Strategy{StrategyMedian, StrategySAH, StrategyMortonTopDown, StrategyLBVH}

func mustBuild(t testing.TB, items []BoundedVolume, opts Options) *Tree {
	tree, err := Build(items, opts)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return tree
}

// Get the sorted position range covered by each node, in always-hit walk order.
func subtreeRanges(tree *Tree) [][2]int {
	var lo, hi func(int) int
	lo = func(i int) int {
		n := &tree.Nodes[i]
		if n.Leaf {
			return n.First
		}
		return min(lo(n.Left), lo(n.Right))
	}
	hi = func(i int) int {
		n := &tree.Nodes[i]
		if n.Leaf {
			return n.First + n.Count
		}
		return max(hi(n.Left), hi(n.Right))
	}

	var out [][2]int
	for cur := 0; cur != -1; cur = tree.Nodes[cur].HitNext {
		out = append(out, [2]int{lo(cur), hi(cur)})
	}
	return out
}
