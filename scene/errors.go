package scene

import "errors"

var (
	ErrNoTriangles = errors.New("scene: no triangles have been supplied to BuildBVH")
)
