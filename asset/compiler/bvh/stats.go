package bvh

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Relative costs used when estimating the SAH cost of a finished tree.
const (
	traversalCost    = 1.0
	intersectionCost = 1.0
)

// Tree statistics.
type Stats struct {
	Nodes    int
	Leaves   int
	Items    int
	MaxDepth int

	MinLeafItems int
	MaxLeafItems int
	AvgLeafItems float32

	// Expected traversal cost relative to the root surface area.
	SAHCost float32
}

// Collect statistics for the tree.
func (t *Tree) Stats() Stats {
	var st Stats
	if t.Len() == 0 {
		return st
	}

	st.Nodes = len(t.Nodes)
	st.Items = len(t.TriIndices)
	st.MinLeafItems = st.Items

	rootArea := t.Nodes[0].Box.SurfaceArea()
	type pending struct{ node, depth int }
	stack := []pending{{0, 0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.depth > st.MaxDepth {
			st.MaxDepth = p.depth
		}

		n := &t.Nodes[p.node]
		relArea := float32(1)
		if rootArea > 0 {
			relArea = n.Box.SurfaceArea() / rootArea
		}

		if n.Leaf {
			st.Leaves++
			st.MinLeafItems = min(st.MinLeafItems, n.Count)
			st.MaxLeafItems = max(st.MaxLeafItems, n.Count)
			st.SAHCost += relArea * intersectionCost * float32(n.Count)
			continue
		}

		st.SAHCost += relArea * traversalCost
		stack = append(stack, pending{n.Left, p.depth + 1}, pending{n.Right, p.depth + 1})
	}

	if st.Leaves > 0 {
		st.AvgLeafItems = float32(st.Items) / float32(st.Leaves)
	}
	return st
}

// Build a tabular representation of the tree statistics.
func (st Stats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Items", fmt.Sprint(st.Items)})
	table.Append([]string{"Nodes", fmt.Sprint(st.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprint(st.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprint(st.MaxDepth)})
	table.Append([]string{"Items per leaf", fmt.Sprintf("%d / %.2f / %d", st.MinLeafItems, st.AvgLeafItems, st.MaxLeafItems)})
	table.Append([]string{"SAH cost", fmt.Sprintf("%.3f", st.SAHCost)})
	table.Render()
	return buf.String()
}
