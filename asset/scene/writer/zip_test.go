package writer

import (
	"path/filepath"
	"testing"

	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/asset/scene/reader"
	"github.com/achilleasa/lbvh/types"
	"github.com/google/go-cmp/cmp"
)

func TestZipRoundTrip(t *testing.T) {
	var leaf scene.BvhNode
	leaf.SetTriangles(0, 1)
	leaf.SetLinks(-1, -1)

	links := make([][]scene.DirectionalLink, 6)
	for dir := range links {
		links[dir] = []scene.DirectionalLink{{Hit: -1, Miss: -1}}
	}

	sc := &scene.Scene{
		Strategy:         "median",
		MaxLeafSize:      4,
		BvhNodeList:      []scene.BvhNode{leaf},
		TriIndexList:     []uint32{0},
		DirectionalLinks: links,
		VertexList:       []types.Vec4{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}},
	}

	file := filepath.Join(t.TempDir(), "scene.zip")
	if err := WriteScene(sc, file); err != nil {
		t.Fatal(err)
	}

	loaded, err := reader.ReadScene(file)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sc, loaded); diff != "" {
		t.Fatalf("scene mismatch after round-trip (-written +loaded):\n%s", diff)
	}
}

func TestWriteToMissingDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing", "scene.zip")
	if err := WriteScene(&scene.Scene{}, file); err == nil {
		t.Fatal("expected an error writing into a missing directory")
	}
}
