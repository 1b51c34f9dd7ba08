package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/log"
	accel "github.com/achilleasa/lbvh/scene"
	"github.com/achilleasa/lbvh/types"
)

// Compiler options.
type Options struct {
	// Host builder options. Also used to label the compiled scene.
	BVH bvh.Options

	// An optional builder that overrides the host builder selected by BVH
	// (e.g. a device builder).
	Builder bvh.Builder

	// Strategy label recorded in the compiled scene; defaults to the
	// name of BVH.Strategy.
	StrategyName string
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger
	opts           Options
}

// Compile a scene representation parsed by a scene reader into a GPU-friendly
// optimized scene format.
func Compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	if opts.StrategyName == "" {
		opts.StrategyName = opts.BVH.Strategy.String()
	}

	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		optimizedScene: &scene.Scene{
			Strategy:    opts.StrategyName,
			MaxLeafSize: uint32(opts.BVH.MaxLeafSize),
		},
		logger: log.New("scene compiler"),
		opts:   opts,
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	compiler.copyGeometry()

	err := compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Copy triangle vertices into a flat list in input order.
func (sc *sceneCompiler) copyGeometry() {
	tris := sc.parsedScene.Triangles()
	sc.optimizedScene.VertexList = make([]types.Vec4, 3*len(tris))
	for index, tri := range tris {
		for v := 0; v < 3; v++ {
			sc.optimizedScene.VertexList[3*index+v] = tri.Vertices[v].Vec4(0)
		}
	}
}

// Build the scene BVH and convert it to the device layout.
func (sc *sceneCompiler) partitionGeometry() error {
	builder := sc.opts.Builder
	if builder == nil {
		var err error
		builder, err = bvh.NewBuilder(sc.opts.BVH)
		if err != nil {
			return err
		}
	}

	workList := sc.parsedScene.WorkList()
	sc.logger.Infof(
		"building %s BVH tree for %d triangles in %d meshes",
		sc.opts.StrategyName, len(workList), len(sc.parsedScene.Meshes),
	)

	acc := accel.NewAccel(builder)
	err := acc.BuildBVH(workList)
	if err != nil {
		return fmt.Errorf("scene compiler: %w", err)
	}

	tree := acc.Tree()
	sc.optimizedScene.BvhNodeList, sc.optimizedScene.TriIndexList, err = scene.EncodeTree(tree)
	if err != nil {
		return fmt.Errorf("scene compiler: %w", err)
	}
	sc.optimizedScene.DirectionalLinks = scene.EncodeDirectionalLinks(tree)

	sc.logger.Debugf("BVH statistics\n%s", tree.Stats())
	return nil
}
