package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/types"
	"github.com/olekukonko/tablewriter"
)

// Bvh nodes are stored as two Vec4 and four int32 values so that each node
// occupies 48 bytes and can be read by kernels as three aligned vectors.
//
// - Min.xyz / Max.xyz hold the node AABB
// - Min.w holds the index of the first leaf triangle in the triangle index list
// - Max.w holds the number of leaf triangles
// - Values[0] holds the hit link and Values[1] the miss link; -1 terminates traversal
// - Values[2] is 1 for leaf nodes and 0 otherwise
// - Values[3] is unused
//
// Leaf offsets and counts are stored as floats which limits the triangle
// list to 2^24 entries.
type BvhNode struct {
	Min    types.Vec4
	Max    types.Vec4
	Values [4]int32
}

// Set bounding box.
func (n *BvhNode) SetBBox(box bvh.AABB) {
	n.Min = box.Min.Vec4(n.Min[3])
	n.Max = box.Max.Vec4(n.Max[3])
}

// Get bounding box.
func (n *BvhNode) BBox() bvh.AABB {
	return bvh.AABB{Min: n.Min.Vec3(), Max: n.Max.Vec3()}
}

// Set the traversal links.
func (n *BvhNode) SetLinks(hit, miss int32) {
	n.Values[0] = hit
	n.Values[1] = miss
}

// Get the traversal links.
func (n *BvhNode) GetLinks() (hit, miss int32) {
	return n.Values[0], n.Values[1]
}

// Set triangle index offset and count and flag node as a leaf.
func (n *BvhNode) SetTriangles(first, count uint32) {
	n.Min[3] = float32(first)
	n.Max[3] = float32(count)
	n.Values[2] = 1
}

// Get triangle index offset and count.
func (n *BvhNode) GetTriangles() (first, count uint32) {
	return uint32(n.Min[3]), uint32(n.Max[3])
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.Values[2] != 0
}

// A hit/miss link pair for one of the six traversal directions.
type DirectionalLink struct {
	Hit  int32
	Miss int32
}

type Scene struct {
	// Build settings used to generate the BVH.
	Strategy    string
	MaxLeafSize uint32

	BvhNodeList []BvhNode

	// Maps a leaf triangle slot to a triangle in the vertex list.
	TriIndexList []uint32

	// Optional traversal orders for the six major directions. Either
	// empty or one list per direction, each parallel to BvhNodeList.
	DirectionalLinks [][]DirectionalLink

	// Three vertices per triangle in input order. Vertices are stored as
	// Vec4 which is required for proper alignment inside opencl kernels.
	VertexList []types.Vec4
}

// Get the number of triangles in the scene.
func (sc *Scene) TriangleCount() int {
	return len(sc.VertexList) / 3
}

// Rebuild the triangle work list from the vertex list. The returned items
// are in the same order as the list that was used to build the BVH.
func (sc *Scene) WorkList() []bvh.BoundedVolume {
	workList := make([]bvh.BoundedVolume, sc.TriangleCount())
	for index := range workList {
		v := sc.VertexList[3*index : 3*index+3]
		workList[index] = input.NewTriangle(v[0].Vec3(), v[1].Vec3(), v[2].Vec3())
	}
	return workList
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"Geometry", "---", fmtSize(sc.VertexList)})
	table.Append([]string{"", fmt.Sprintf("Vertices (%d triangles)", sc.TriangleCount()), fmtSize(sc.VertexList)})
	table.Append([]string{" ", " ", " "})

	var linkSize []interface{}
	for _, links := range sc.DirectionalLinks {
		linkSize = append(linkSize, links)
	}
	table.Append([]string{"BVH", "---", fmtSize(append([]interface{}{sc.BvhNodeList, sc.TriIndexList}, linkSize...)...)})
	table.Append([]string{"", fmt.Sprintf("Nodes (%s, leaf size %d)", sc.Strategy, sc.MaxLeafSize), fmtSize(sc.BvhNodeList)})
	table.Append([]string{"", "Triangle indices", fmtSize(sc.TriIndexList)})
	table.Append([]string{"", "Directional links", fmtSize(linkSize...)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(append([]interface{}{sc.VertexList, sc.BvhNodeList, sc.TriIndexList}, linkSize...)...), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
