package lbvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
	"github.com/achilleasa/lbvh/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewBuilderWithoutDevice(t *testing.T) {
	_, err := NewBuilder(nil, bvh.DefaultOptions())
	if err != ErrNoDevice {
		t.Fatalf("expected ErrNoDevice; got %v", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	b := createTestBuilder(t, bvh.DefaultOptions())
	defer b.Close()

	tree, err := b.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 0 {
		t.Fatalf("expected an empty tree; got %d nodes", tree.Len())
	}
	if b.NodeCount() != 0 {
		t.Fatalf("expected node count to be 0; got %d", b.NodeCount())
	}
}

func TestBuildSingleItem(t *testing.T) {
	b := createTestBuilder(t, bvh.DefaultOptions())
	defer b.Close()

	workList := randomTriangles(1, 1)
	tree, err := b.Build(workList)
	if err != nil {
		t.Fatal(err)
	}

	if tree.Len() != 1 {
		t.Fatalf("expected a single node; got %d", tree.Len())
	}
	root := tree.Nodes[0]
	if !root.Leaf || root.HitNext != -1 || root.MissNext != -1 {
		t.Fatalf("expected a terminating leaf; got %+v", root)
	}
	if diff := cmp.Diff(workList[0].BBox(), root.Box); diff != "" {
		t.Fatalf("leaf box mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMatchesHostBuilder(t *testing.T) {
	b := createTestBuilder(t, bvh.DefaultOptions())
	defer b.Close()

	hostOpts := bvh.DefaultOptions()
	hostOpts.Strategy = bvh.StrategyLBVH

	for _, count := range []int{2, 3, 17, 256, 1000, 5000} {
		workList := randomTriangles(int64(count), count)

		tree, err := b.Build(workList)
		if err != nil {
			t.Fatalf("[count %d] %v", count, err)
		}
		if err = tree.Validate(workList); err != nil {
			t.Fatalf("[count %d] invalid tree: %v", count, err)
		}
		if b.NodeCount() != 2*count-1 {
			t.Fatalf("[count %d] expected %d nodes; got %d", count, 2*count-1, b.NodeCount())
		}

		expTree, err := bvh.Build(workList, hostOpts)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(expTree, tree, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
			t.Fatalf("[count %d] tree mismatch (-host +device):\n%s", count, diff)
		}
	}
}

func TestBuildDuplicateCenters(t *testing.T) {
	b := createTestBuilder(t, bvh.DefaultOptions())
	defer b.Close()

	tri := input.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0))
	workList := make([]bvh.BoundedVolume, 64)
	for i := range workList {
		workList[i] = tri
	}

	tree, err := b.Build(workList)
	if err != nil {
		t.Fatal(err)
	}
	if err = tree.Validate(workList); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSixSided(t *testing.T) {
	opts := bvh.DefaultOptions()
	opts.SixSided = true
	b := createTestBuilder(t, opts)
	defer b.Close()

	workList := randomTriangles(7, 100)
	tree, err := b.Build(workList)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Directional == nil {
		t.Fatal("expected directional links to be generated")
	}
	if err = tree.Validate(workList); err != nil {
		t.Fatal(err)
	}
}

func TestBuildTooManyItems(t *testing.T) {
	b := createTestBuilder(t, bvh.DefaultOptions())
	defer b.Close()

	_, err := b.Build(make([]bvh.BoundedVolume, 1<<22+1))
	if err != ErrTooManyItems {
		t.Fatalf("expected ErrTooManyItems; got %v", err)
	}
}

func randomTriangles(seed int64, count int) []bvh.BoundedVolume {
	rng := rand.New(rand.NewSource(seed))
	point := func() types.Vec3 {
		return types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
	}

	workList := make([]bvh.BoundedVolume, count)
	for i := range workList {
		v0 := point()
		workList[i] = input.NewTriangle(v0, v0.Add(types.Splat(rng.Float32())), v0.Add(types.XYZ(rng.Float32(), 0, 1)))
	}
	return workList
}

func createTestBuilder(t *testing.T, opts bvh.Options) *Builder {
	devList, err := device.SelectDevices(device.AllDevices, "")
	if err != nil || len(devList) == 0 {
		t.Skip("no opencl device available")
	}

	b, err := NewBuilder(devList[0], opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(devList[0].Close)
	return b
}
