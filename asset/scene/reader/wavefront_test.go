package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/types"
)

func TestParseGeometry(t *testing.T) {
	payload := `
# a quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
usemtl ignored

f 1 2 3 4
o tri
f 1//1 -3//1 -1//1
`
	res := asset.NewResourceFromStream("test.obj", strings.NewReader(payload))
	sc, err := newWavefrontReader().Read(res)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Meshes) != 2 {
		t.Fatalf("expected 2 meshes; got %d", len(sc.Meshes))
	}
	if sc.Meshes[0].Name != defaultMeshName || len(sc.Meshes[0].Triangles) != 2 {
		t.Fatalf("expected quad to be split into 2 triangles in the default mesh; got %d in %q", len(sc.Meshes[0].Triangles), sc.Meshes[0].Name)
	}

	tri := sc.Meshes[1].Triangles[0]
	expVerts := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if tri.Vertices != expVerts {
		t.Fatalf("expected triangle vertices %v; got %v", expVerts, tri.Vertices)
	}
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		payload string
		expErr  string
	}{
		{"v 0 0", `expected 3 arguments; got 2`},
		{"v 0 0 0\nf 1 2", `expected 3 arguments for triangular face`},
		{"v 0 0 0\nf 1 1 4", `index out of bounds`},
		{"v 0 0 0\nf 1/1 1 1", `expected each face argument to contain 2 indices`},
		{"o", `expected 1 argument for object name`},
	}

	for index, spec := range specs {
		res := asset.NewResourceFromStream("test.obj", strings.NewReader(spec.payload))
		_, err := newWavefrontReader().Read(res)
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, spec.expErr, err)
		}
	}
}

func TestDropEmptyMeshes(t *testing.T) {
	payload := "o empty\no full\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\no trailing\n"
	res := asset.NewResourceFromStream("test.obj", strings.NewReader(payload))
	sc, err := newWavefrontReader().Read(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Meshes) != 1 || sc.Meshes[0].Name != "full" {
		t.Fatalf("expected only the non-empty mesh to survive; got %d meshes", len(sc.Meshes))
	}
}

func TestReadGeometryWithIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "part.obj"), "o part\nv 5 5 5\nv 6 5 5\nv 5 6 5\nf 1 2 3\n")
	writeFile(t, filepath.Join(dir, "main.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\ncall part.obj\nf -3 -2 -1\n")

	sc, err := ReadGeometry(filepath.Join(dir, "main.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if got := sc.TriangleCount(); got != 3 {
		t.Fatalf("expected 3 triangles; got %d", got)
	}

	// Vertex indices in the included file are relative to that file.
	part := sc.Meshes[1].Triangles[0]
	if part.Vertices[0] != (types.Vec3{5, 5, 5}) {
		t.Fatalf("expected included triangle to start at (5, 5, 5); got %v", part.Vertices[0])
	}

	// Negative indices after the include refer to the included vertices.
	last := sc.Meshes[1].Triangles[1]
	if last.Vertices[2] != (types.Vec3{5, 6, 5}) {
		t.Fatalf("expected last triangle to reference the included vertices; got %v", last.Vertices)
	}
}

func TestReadGeometryMissingInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.obj"), "call missing.obj\n")

	_, err := ReadGeometry(filepath.Join(dir, "main.obj"))
	if err == nil || !strings.Contains(err.Error(), "referenced from") {
		t.Fatalf("expected error with include stack; got %v", err)
	}
}

func TestReadUnsupportedFormats(t *testing.T) {
	if _, err := ReadGeometry("scene.fbx"); err == nil {
		t.Fatal("expected an error for an unsupported geometry format")
	}
	if _, err := ReadGeometry(); err == nil {
		t.Fatal("expected an error when no files are specified")
	}
	if _, err := ReadScene(filepath.Join(t.TempDir(), "scene.obj")); err == nil {
		t.Fatal("expected an error for an unsupported compiled scene format")
	}
}

func writeFile(t *testing.T, path, data string) {
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}
