package compiler

import (
	"errors"
	"testing"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/types"
)

func testScene() *input.Scene {
	sc := input.NewScene()
	mesh := input.NewMesh("grid")
	for x := 0; x < 6; x++ {
		for z := 0; z < 6; z++ {
			o := types.Vec3{float32(x), 0, float32(z)}
			mesh.Append(input.NewTriangle(o, o.Add(types.Vec3{1, 0, 0}), o.Add(types.Vec3{0, 0, 1})))
		}
	}
	sc.Meshes = append(sc.Meshes, mesh)
	return sc
}

func TestCompile(t *testing.T) {
	raw := testScene()
	for _, strategy := range []bvh.Strategy{bvh.StrategyMedian, bvh.StrategySAH, bvh.StrategyMortonTopDown, bvh.StrategyLBVH} {
		opts := Options{BVH: bvh.Options{Strategy: strategy, MaxLeafSize: 4, SixSided: true}}
		sc, err := Compile(raw, opts)
		if err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}

		if sc.Strategy != strategy.String() || sc.MaxLeafSize != 4 {
			t.Fatalf("[%s] expected build settings to be recorded; got %q, %d", strategy, sc.Strategy, sc.MaxLeafSize)
		}
		if sc.TriangleCount() != raw.TriangleCount() {
			t.Fatalf("[%s] expected %d triangles; got %d", strategy, raw.TriangleCount(), sc.TriangleCount())
		}
		if len(sc.DirectionalLinks) != int(bvh.NumDirections) {
			t.Fatalf("[%s] expected %d directional link sets; got %d", strategy, bvh.NumDirections, len(sc.DirectionalLinks))
		}

		tree, err := sc.Tree()
		if err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}
		if err = tree.Validate(raw.WorkList()); err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}

		// Vertex list follows input order.
		first := raw.Triangles()[0]
		if sc.VertexList[1] != first.Vertices[1].Vec4(0) {
			t.Fatalf("[%s] expected vertex list to follow input order", strategy)
		}
	}
}

type failingBuilder struct{}

var errBuild = errors.New("device lost")

func (failingBuilder) Build([]bvh.BoundedVolume) (*bvh.Tree, error) {
	return nil, errBuild
}

func TestCompileWithCustomBuilder(t *testing.T) {
	_, err := Compile(testScene(), Options{BVH: bvh.DefaultOptions(), Builder: failingBuilder{}, StrategyName: "gpu"})
	if !errors.Is(err, errBuild) {
		t.Fatalf("expected builder error to be propagated; got %v", err)
	}
}

func TestCompileInvalidOptions(t *testing.T) {
	_, err := Compile(testScene(), Options{BVH: bvh.Options{Strategy: bvh.StrategySAH}})
	if err != bvh.ErrInvalidLeafSize {
		t.Fatalf("expected ErrInvalidLeafSize; got %v", err)
	}
}
