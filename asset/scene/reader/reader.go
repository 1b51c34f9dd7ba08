package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/asset/scene"
)

// The GeometryReader interface is implemented by readers that parse raw
// scene geometry.
type GeometryReader interface {
	// Read raw geometry from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// The Reader interface is implemented by readers of compiled scenes.
type Reader interface {
	// Read compiled scene from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read raw scene geometry from one or more files. The geometry of all files
// is merged into a single scene.
func ReadGeometry(filenames ...string) (*input.Scene, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("readGeometry: no input files specified")
	}

	merged := input.NewScene()
	for _, filename := range filenames {
		if !strings.HasSuffix(filename, ".obj") {
			return nil, fmt.Errorf("readGeometry: unsupported file format for %q", filename)
		}

		res, err := asset.NewResource(filename, nil)
		if err != nil {
			return nil, err
		}
		sc, err := newWavefrontReader().Read(res)
		res.Close()
		if err != nil {
			return nil, err
		}
		merged.Meshes = append(merged.Meshes, sc.Meshes...)
	}
	return merged, nil
}

// Read compiled scene from file.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".zip") {
		reader = newZipSceneReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}
	return reader.Read(res)
}
