package scene

import (
	"time"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/log"
)

// Accel owns the acceleration structure for a triangle set. Each build
// replaces the current tree wholesale. Accel performs no locking; callers
// must not query the tree while a build is in progress.
type Accel struct {
	logger  log.Logger
	builder bvh.Builder

	// Triangles supplied to the last successful build.
	workList []bvh.BoundedVolume
	tree     *bvh.Tree
}

// Create a new acceleration structure that uses builder for constructing
// BVH trees.
func NewAccel(builder bvh.Builder) *Accel {
	return &Accel{
		logger:  log.New("accel"),
		builder: builder,
	}
}

// Replace the builder used by future builds.
func (a *Accel) SetBuilder(builder bvh.Builder) {
	a.builder = builder
}

// BuildBVH constructs a new tree for the supplied triangles. If the build
// fails the previous tree and triangle set are kept.
func (a *Accel) BuildBVH(workList []bvh.BoundedVolume) error {
	start := time.Now()
	tree, err := a.builder.Build(workList)
	if err != nil {
		a.logger.Errorf("BVH build failed: %v", err)
		return err
	}

	a.workList = workList
	a.tree = tree
	a.logger.Infof(
		"built BVH for %d triangles (%d nodes) in %d ms",
		len(workList), tree.Len(), time.Since(start).Nanoseconds()/1e6,
	)
	return nil
}

// RebuildBVH reconstructs the tree from the triangles of the last
// successful build, for instance after they have moved.
func (a *Accel) RebuildBVH() error {
	if a.tree == nil {
		return ErrNoTriangles
	}
	return a.BuildBVH(a.workList)
}

// Get the current tree or nil if no tree has been built yet.
func (a *Accel) Tree() *bvh.Tree {
	return a.tree
}

// Get the triangles supplied to the last successful build.
func (a *Accel) WorkList() []bvh.BoundedVolume {
	return a.workList
}

// Get the bounds of all triangles in the current tree.
func (a *Accel) Bounds() bvh.AABB {
	if a.tree == nil {
		return bvh.EmptyAABB()
	}
	return a.tree.Bounds()
}

// Overlapping returns the indices of the triangles whose boxes overlap
// the query box.
func (a *Accel) Overlapping(box bvh.AABB) []int {
	if a.tree == nil {
		return nil
	}

	candidates := a.tree.Overlapping(box)
	out := candidates[:0]
	for _, index := range candidates {
		if a.workList[index].BBox().Overlaps(box) {
			out = append(out, index)
		}
	}
	return out
}

// Validate checks the current tree against the triangles it was built from.
func (a *Accel) Validate() error {
	if a.tree == nil {
		return ErrNoTriangles
	}
	return a.tree.Validate(a.workList)
}
