package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Name of the mesh that receives faces defined before any "o" or "g" record.
const defaultMeshName = "default"

// A geometry-only wavefront reader. Only vertex positions and faces are
// used; normals, texture coordinates and materials are skipped.
type wavefrontReader struct {
	logger log.Logger

	// The parsed scene.
	rawScene *input.Scene

	// List of parsed vertices for all visited files.
	vertexList []types.Vec3

	// Number of skipped records by type.
	skipped map[string]int

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront geometry reader.
func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger:     log.New("wavefront reader"),
		rawScene:   input.NewScene(),
		vertexList: make([]types.Vec3, 0),
		skipped:    make(map[string]int),
		errStack:   make([]string, 0),
	}
}

// Read scene geometry.
func (r *wavefrontReader) Read(res *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing geometry from "%s"`, res.Path())
	start := time.Now()

	err := r.parse(res)
	if err != nil {
		return nil, err
	}

	for recType, count := range r.skipped {
		r.logger.Debugf(`skipped %d "%s" records`, count, recType)
	}

	r.logger.Noticef(
		"parsed %d triangles in %d meshes in %d ms",
		r.rawScene.TriangleCount(), len(r.rawScene.Meshes), time.Since(start).Nanoseconds()/1e6,
	)
	return r.rawScene, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return fmt.Errorf("%s", strings.Trim(
		fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
		"\n",
	))
}

// Push a frame to the error stack.
func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the mesh that receives parsed faces, creating a default one if needed.
func (r *wavefrontReader) currentMesh() *input.Mesh {
	if len(r.rawScene.Meshes) == 0 {
		r.rawScene.Meshes = append(r.rawScene.Meshes, input.NewMesh(defaultMeshName))
	}
	return r.rawScene.Meshes[len(r.rawScene.Meshes)-1]
}

// Parse wavefront object geometry.
func (r *wavefrontReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex offset we can apply it while parsing
	// faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))
			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.verifyLastParsedMesh()
			r.rawScene.Meshes = append(r.rawScene.Meshes, input.NewMesh(lineTokens[1]))
		case "f":
			triList, err := r.parseFace(lineTokens, relVertexOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.currentMesh().Append(triList...)
		default:
			r.skipped[lineTokens[0]]++
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.verifyLastParsedMesh()
	return nil
}

// Drop the last parsed mesh if it contains no triangles.
func (r *wavefrontReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.rawScene.Meshes) - 1
	if lastMeshIndex >= 0 && len(r.rawScene.Meshes[lastMeshIndex].Triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.rawScene.Meshes[lastMeshIndex].Name)
		r.rawScene.Meshes = r.rawScene.Meshes[:lastMeshIndex]
	}
}

// Parse face definition. Each face definition consists of 3 or 4 vertex
// arguments. Each vertex argument is comprised of 1, 2 or 3 indices
// separated by a slash character; only the first (vertex) index is used:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the
// end of the vertex list. Quads are split into two triangles.
func (r *wavefrontReader) parseFace(lineTokens []string, relVertexOffset int) ([]*input.Triangle, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]
	}

	tris := []*input.Triangle{input.NewTriangle(vertices[0], vertices[1], vertices[2])}
	if len(lineTokens) == 5 {
		tris = append(tris, input.NewTriangle(vertices[0], vertices[2], vertices[3]))
	}
	return tris, nil
}

// Given an index for a face coord calculate the proper offset into the
// coord list. Wavefront format can also use negative indices to reference
// elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
