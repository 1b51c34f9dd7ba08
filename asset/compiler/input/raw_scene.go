package input

import (
	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/types"
)

// A triangle primitive.
type Triangle struct {
	Vertices [3]types.Vec3

	bbox   bvh.AABB
	center types.Vec3
}

// Create a triangle and precompute its bounding box and centroid.
func NewTriangle(v0, v1, v2 types.Vec3) *Triangle {
	return &Triangle{
		Vertices: [3]types.Vec3{v0, v1, v2},
		bbox:     bvh.AABBFromPoints(v0, v1, v2),
		center:   v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
	}
}

// Get the triangle AABB.
func (tri *Triangle) BBox() bvh.AABB {
	return tri.bbox
}

// Get the triangle centroid.
func (tri *Triangle) Center() types.Vec3 {
	return tri.center
}

// A mesh is constructed by a list of triangles.
type Mesh struct {
	Name      string
	Triangles []*Triangle

	bbox            bvh.AABB
	bboxNeedsUpdate bool
}

// Create a new empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Triangles:       make([]*Triangle, 0),
		bbox:            bvh.EmptyAABB(),
		bboxNeedsUpdate: false,
	}
}

// Append triangles to the mesh.
func (m *Mesh) Append(tris ...*Triangle) {
	m.Triangles = append(m.Triangles, tris...)
	m.bboxNeedsUpdate = true
}

// Get the mesh AABB. The box is recalculated lazily after triangles are appended.
func (m *Mesh) BBox() bvh.AABB {
	if m.bboxNeedsUpdate {
		m.bbox = bvh.EmptyAABB()
		for _, tri := range m.Triangles {
			m.bbox = bvh.Union(m.bbox, tri.bbox)
		}
		m.bboxNeedsUpdate = false
	}
	return m.bbox
}

// The raw scene is a triangle soup grouped into named meshes.
type Scene struct {
	Meshes []*Mesh
}

// Create a new empty scene.
func NewScene() *Scene {
	return &Scene{
		Meshes: make([]*Mesh, 0),
	}
}

// Get the total number of triangles in all meshes.
func (sc *Scene) TriangleCount() int {
	count := 0
	for _, mesh := range sc.Meshes {
		count += len(mesh.Triangles)
	}
	return count
}

// Get a flat list of all scene triangles in mesh order.
func (sc *Scene) Triangles() []*Triangle {
	tris := make([]*Triangle, 0, sc.TriangleCount())
	for _, mesh := range sc.Meshes {
		tris = append(tris, mesh.Triangles...)
	}
	return tris
}

// Get the scene triangles as a work list for the bvh builders.
func (sc *Scene) WorkList() []bvh.BoundedVolume {
	tris := sc.Triangles()
	workList := make([]bvh.BoundedVolume, len(tris))
	for index, tri := range tris {
		workList[index] = tri
	}
	return workList
}

// Get the bounding box of the scene.
func (sc *Scene) BBox() bvh.AABB {
	box := bvh.EmptyAABB()
	for _, mesh := range sc.Meshes {
		box = bvh.Union(box, mesh.BBox())
	}
	return box
}
