package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/asset/scene/reader"
	accel "github.com/achilleasa/lbvh/scene"
	"github.com/urfave/cli"
)

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("only compiled scene files with a .zip extension are supported")
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	tree, err := sc.Tree()
	if err != nil {
		return err
	}

	err = tree.Validate(sc.WorkList())
	if err != nil {
		return fmt.Errorf("BVH validation failed: %w", err)
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("BVH statistics:\n%s", tree.Stats())

	return nil
}

// Build a BVH for an obj file or load the BVH of a compiled scene and check
// that it satisfies all tree invariants.
func VerifyScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	var (
		sceneFile = ctx.Args().First()
		tree      *bvh.Tree
		workList  []bvh.BoundedVolume
		err       error
	)

	switch {
	case strings.HasSuffix(sceneFile, ".obj"):
		tree, workList, err = buildTree(ctx, sceneFile)
	case strings.HasSuffix(sceneFile, ".zip"):
		logger.Noticef("loading compiled scene: %s", sceneFile)
		sc, readErr := reader.ReadScene(sceneFile)
		if readErr != nil {
			return readErr
		}
		workList = sc.WorkList()
		tree, err = sc.Tree()
	default:
		return errors.New("only scene files with a .obj or .zip extension are supported")
	}
	if err != nil {
		return err
	}

	err = tree.Validate(workList)
	if err != nil {
		return fmt.Errorf("BVH validation failed: %w", err)
	}

	logger.Noticef("BVH statistics:\n%s", tree.Stats())
	logger.Noticef("BVH for %d triangles is valid", len(workList))
	return nil
}

func buildTree(ctx *cli.Context, sceneFile string) (*bvh.Tree, []bvh.BoundedVolume, error) {
	opts, closeFn, err := compilerOptions(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	logger.Noticef("parsing scene geometry from: %s", sceneFile)
	rawScene, err := reader.ReadGeometry(sceneFile)
	if err != nil {
		return nil, nil, err
	}

	builder := opts.Builder
	if builder == nil {
		builder, err = bvh.NewBuilder(opts.BVH)
		if err != nil {
			return nil, nil, err
		}
	}

	acc := accel.NewAccel(builder)
	err = acc.BuildBVH(rawScene.WorkList())
	if err != nil {
		return nil, nil, err
	}
	return acc.Tree(), acc.WorkList(), nil
}
