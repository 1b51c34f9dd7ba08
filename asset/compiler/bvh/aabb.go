package bvh

import (
	"math"

	"github.com/achilleasa/lbvh/types"
)

// An axis-aligned bounding box.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty box. Empty boxes are the identity element for Union.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: types.Vec3{inf, inf, inf},
		Max: types.Vec3{-inf, -inf, -inf},
	}
}

// Create a box spanning a list of points.
func AABBFromPoints(points ...types.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Grow(p)
	}
	return box
}

// Union returns the smallest box enclosing both a and b.
func Union(a, b AABB) AABB {
	return AABB{
		Min: types.MinVec3(a.Min, b.Min),
		Max: types.MaxVec3(a.Max, b.Max),
	}
}

// Grow the box so that it includes point p.
func (b AABB) Grow(p types.Vec3) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Returns true if the box has been seeded but never grown.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Get box dimensions. Empty boxes have zero extent.
func (b AABB) Extent() types.Vec3 {
	if b.IsEmpty() {
		return types.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get box center.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Calculate box surface area: 2 * (sx*sy + sy*sz + sz*sx).
func (b AABB) SurfaceArea() float32 {
	s := b.Extent()
	return 2 * (s[0]*s[1] + s[1]*s[2] + s[2]*s[0])
}

// Get the axis with the largest extent. Ties are resolved in X, Y, Z order.
func (b AABB) LongestAxis() Axis {
	s := b.Extent()
	axis := XAxis
	if s[1] > s[axis] {
		axis = YAxis
	}
	if s[2] > s[axis] {
		axis = ZAxis
	}
	return axis
}

// Returns true if other lies entirely inside b (borders included).
func (b AABB) Contains(other AABB) bool {
	for i := 0; i < 3; i++ {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Returns true if the two boxes share at least one point.
func (b AABB) Overlaps(other AABB) bool {
	for i := 0; i < 3; i++ {
		if other.Max[i] < b.Min[i] || other.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}
