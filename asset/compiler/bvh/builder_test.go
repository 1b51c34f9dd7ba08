package bvh

import (
	"errors"
	"fmt"
	"testing"

	"github.com/achilleasa/lbvh/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range allStrategies {
		parsed, err := ParseStrategy(s.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != s {
			t.Fatalf("expected to parse %q as %d; got %d", s.String(), s, parsed)
		}
	}

	if _, err := ParseStrategy(" SAH "); err != nil {
		t.Fatalf("expected strategy names to be case-insensitive; got %v", err)
	}

	_, err := ParseStrategy("octree")
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy; got %v", err)
	}
}

func TestNewBuilderValidation(t *testing.T) {
	if _, err := NewBuilder(Options{Strategy: StrategyMedian}); err != ErrInvalidLeafSize {
		t.Fatalf("expected ErrInvalidLeafSize; got %v", err)
	}
	if _, err := NewBuilder(Options{Strategy: Strategy(42), MaxLeafSize: 1}); err != ErrUnknownStrategy {
		t.Fatalf("expected ErrUnknownStrategy; got %v", err)
	}
}

func TestEmptyWorkList(t *testing.T) {
	for _, s := range allStrategies {
		tree := mustBuild(t, nil, Options{Strategy: s, MaxLeafSize: 1, SixSided: true})
		if tree.Len() != 0 || len(tree.TriIndices) != 0 {
			t.Fatalf("[%s] expected empty tree; got %d nodes", s, tree.Len())
		}
		if err := tree.Validate(nil); err != nil {
			t.Fatalf("[%s] %v", s, err)
		}
	}
}

func TestSingleTriangle(t *testing.T) {
	items := []BoundedVolume{itemAt(types.Vec3{1, 2, 3}, 0.5)}

	for _, s := range allStrategies {
		tree := mustBuild(t, items, Options{Strategy: s, MaxLeafSize: 1})
		if tree.Len() != 1 {
			t.Fatalf("[%s] expected a single node; got %d", s, tree.Len())
		}

		root := tree.Nodes[0]
		if !root.Leaf || root.First != 0 || root.Count != 1 {
			t.Fatalf("[%s] expected a leaf holding item 0; got %+v", s, root)
		}
		if root.HitNext != -1 || root.MissNext != -1 {
			t.Fatalf("[%s] expected hit and miss links to be -1; got %d, %d", s, root.HitNext, root.MissNext)
		}
		if root.Box != items[0].BBox() {
			t.Fatalf("[%s] expected leaf box %v; got %v", s, items[0].BBox(), root.Box)
		}
	}
}

func TestTwoTrianglesMedianSplit(t *testing.T) {
	items := pointItems(types.Vec3{10, 0, 0}, types.Vec3{0, 0, 0})
	tree := mustBuild(t, items, Options{Strategy: StrategyMedian, MaxLeafSize: 1})

	if tree.Len() != 3 {
		t.Fatalf("expected 3 nodes; got %d", tree.Len())
	}

	root := tree.Nodes[0]
	if root.Leaf {
		t.Fatal("expected root to be an internal node")
	}
	expBox := AABB{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{10, 0, 0}}
	if root.Box != expBox {
		t.Fatalf("expected root box %v; got %v", expBox, root.Box)
	}

	// The split at x=5 places the item at the origin on the left.
	left, right := tree.Nodes[root.Left], tree.Nodes[root.Right]
	if !left.Leaf || !right.Leaf {
		t.Fatal("expected both children to be leaves")
	}
	if got := tree.LeafItems(root.Left); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected left leaf to hold item 1; got %v", got)
	}
	if got := tree.LeafItems(root.Right); len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected right leaf to hold item 0; got %v", got)
	}

	if root.HitNext != root.Left || root.MissNext != -1 {
		t.Fatalf("expected root links (%d, -1); got (%d, %d)", root.Left, root.HitNext, root.MissNext)
	}
	if left.HitNext != root.Right || left.MissNext != root.Right {
		t.Fatalf("expected left leaf to continue into right sibling; got (%d, %d)", left.HitNext, left.MissNext)
	}
	if right.HitNext != -1 || right.MissNext != -1 {
		t.Fatalf("expected right leaf to terminate the walk; got (%d, %d)", right.HitNext, right.MissNext)
	}
}

func TestDegenerateCentroids(t *testing.T) {
	items := make([]BoundedVolume, 8)
	for i := range items {
		items[i] = itemAt(types.Vec3{3, 3, 3}, float32(i+1)*0.1)
	}

	for _, s := range allStrategies {
		for _, leafSize := range []int{1, 3} {
			tree := mustBuild(t, items, Options{Strategy: s, MaxLeafSize: leafSize})
			if err := tree.Validate(items); err != nil {
				t.Fatalf("[%s, leaf size %d] %v", s, leafSize, err)
			}
		}
	}
}

func TestInvariantsRandomInput(t *testing.T) {
	for _, count := range []int{2, 3, 7, 64, 1000} {
		items := randomItems(int64(count), count)
		for _, s := range allStrategies {
			for _, leafSize := range []int{1, 2, 4} {
				name := fmt.Sprintf("%s/n=%d/leaf=%d", s, count, leafSize)
				t.Run(name, func(t *testing.T) {
					tree := mustBuild(t, items, Options{Strategy: s, MaxLeafSize: leafSize, SixSided: true})
					if err := tree.Validate(items); err != nil {
						t.Fatal(err)
					}

					st := tree.Stats()
					if st.Items != count {
						t.Fatalf("expected stats to report %d items; got %d", count, st.Items)
					}
					maxLeaf := leafSize
					if s == StrategyLBVH {
						maxLeaf = 1
					}
					if st.MaxLeafItems > maxLeaf {
						t.Fatalf("expected leaves to hold at most %d items; got %d", maxLeaf, st.MaxLeafItems)
					}
				})
			}
		}
	}
}

func TestAlwaysHitWalkVisitsEveryLeafOnce(t *testing.T) {
	items := randomItems(99, 257)
	for _, s := range allStrategies {
		tree := mustBuild(t, items, Options{Strategy: s, MaxLeafSize: 2})

		seen := make(map[int]int)
		steps := 0
		tree.Walk(
			func(AABB) bool {
				steps++
				if steps > tree.Len() {
					t.Fatalf("[%s] walk visited more nodes than the tree contains", s)
				}
				return true
			},
			func(nodeIndex int) bool {
				seen[nodeIndex]++
				return true
			},
		)

		for i, n := range tree.Nodes {
			if n.Leaf && seen[i] != 1 {
				t.Fatalf("[%s] expected leaf %d to be visited once; visited %d times", s, i, seen[i])
			}
		}

		// A ray missing everything leaves through the root miss link.
		if tree.Nodes[0].MissNext != -1 {
			t.Fatalf("[%s] expected root miss link to be -1; got %d", s, tree.Nodes[0].MissNext)
		}
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	items := randomItems(1234, 500)
	for _, s := range allStrategies {
		opts := Options{Strategy: s, MaxLeafSize: 2, SixSided: true, Workers: 4}
		first := mustBuild(t, items, opts)
		second := mustBuild(t, items, opts)

		if diff := cmp.Diff(first, second, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
			t.Fatalf("[%s] expected identical trees across rebuilds (-first +second):\n%s", s, diff)
		}
	}
}

// The points below have distinct morton codes. Ranges of duplicate codes are
// split differently by the two builders: the top-down builder splits at the
// range midpoint while LBVH splits at the highest differing bit of the item
// positions, so their topologies only agree for distinct codes.
func TestLBVHMatchesMortonTopDown(t *testing.T) {
	items := pointItems(
		types.Vec3{0, 0, 0},
		types.Vec3{1, 0.2, 0.7},
		types.Vec3{0.3, 0.9, 0.1},
		types.Vec3{0.8, 0.8, 0.8},
		types.Vec3{0.5, 0.1, 0.4},
		types.Vec3{0.2, 0.6, 0.9},
		types.Vec3{0.9, 0.3, 0.2},
		types.Vec3{0.6, 0.5, 0.55},
	)

	for count := 2; count <= len(items); count++ {
		subset := items[:count]
		topDown := mustBuild(t, subset, Options{Strategy: StrategyMortonTopDown, MaxLeafSize: 1})
		linear := mustBuild(t, subset, Options{Strategy: StrategyLBVH, MaxLeafSize: 1})

		if diff := cmp.Diff(topDown.TriIndices, linear.TriIndices); diff != "" {
			t.Fatalf("n=%d: expected identical morton order (-topdown +lbvh):\n%s", count, diff)
		}
		if diff := cmp.Diff(subtreeRanges(topDown), subtreeRanges(linear)); diff != "" {
			t.Fatalf("n=%d: expected identical split points (-topdown +lbvh):\n%s", count, diff)
		}
	}
}

func TestLBVHLayout(t *testing.T) {
	items := randomItems(5, 33)
	tree := mustBuild(t, items, Options{Strategy: StrategyLBVH, MaxLeafSize: 1})

	n := len(items)
	if tree.Len() != 2*n-1 {
		t.Fatalf("expected %d nodes; got %d", 2*n-1, tree.Len())
	}
	for i, node := range tree.Nodes {
		isLeaf := i >= n-1
		if node.Leaf != isLeaf {
			t.Fatalf("node %d: expected leaf flag %t; got %t", i, isLeaf, node.Leaf)
		}
		if isLeaf && node.First != i-(n-1) {
			t.Fatalf("leaf %d: expected to address sorted item %d; got %d", i, i-(n-1), node.First)
		}
	}
}

func TestSAHPrefersSeparatedClusters(t *testing.T) {
	// Two tight clusters far apart; the best split separates them.
	var points []types.Vec3
	for i := 0; i < 4; i++ {
		points = append(points, types.Vec3{float32(i) * 0.1, 0, 0})
	}
	for i := 0; i < 2; i++ {
		points = append(points, types.Vec3{100 + float32(i)*0.1, 0, 0})
	}
	items := make([]BoundedVolume, len(points))
	for i, p := range points {
		items[i] = itemAt(p, 0.05)
	}

	tree := mustBuild(t, items, Options{Strategy: StrategySAH, MaxLeafSize: 1})
	root := tree.Nodes[0]
	right := tree.Nodes[root.Right]
	if right.Box.Min[0] < 99 {
		t.Fatalf("expected right child to contain only the far cluster; got box %v", right.Box)
	}
}
