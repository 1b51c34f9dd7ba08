package bvh

import (
	"strings"
	"testing"

	"github.com/achilleasa/lbvh/types"
)

func TestStats(t *testing.T) {
	items := pointItems(
		types.Vec3{0, 0, 0},
		types.Vec3{1, 0, 0},
		types.Vec3{2, 0, 0},
		types.Vec3{3, 0, 0},
	)
	tree := mustBuild(t, items, Options{Strategy: StrategyMedian, MaxLeafSize: 1})

	st := tree.Stats()
	if st.Nodes != 7 || st.Leaves != 4 || st.Items != 4 {
		t.Fatalf("expected 7 nodes, 4 leaves and 4 items; got %+v", st)
	}
	if st.MaxDepth != 2 {
		t.Fatalf("expected max depth 2; got %d", st.MaxDepth)
	}
	if st.MinLeafItems != 1 || st.MaxLeafItems != 1 || st.AvgLeafItems != 1 {
		t.Fatalf("expected exactly one item per leaf; got %+v", st)
	}

	out := st.String()
	for _, exp := range []string{"Nodes", "SAH cost", "Max depth"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, out)
		}
	}
}

func TestStatsEmptyTree(t *testing.T) {
	if st := (&Tree{}).Stats(); st != (Stats{}) {
		t.Fatalf("expected zero stats; got %+v", st)
	}
}
