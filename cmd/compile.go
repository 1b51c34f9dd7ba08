package cmd

import (
	"errors"
	"strings"

	"github.com/achilleasa/lbvh/asset/compiler"
	"github.com/achilleasa/lbvh/asset/scene/reader"
	"github.com/achilleasa/lbvh/asset/scene/writer"
	"github.com/urfave/cli"
)

// Compile one or more obj files into a single binary scene archive.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	sceneFiles := []string(ctx.Args())
	for _, sceneFile := range sceneFiles {
		if !strings.HasSuffix(sceneFile, ".obj") {
			return errors.New("only scene files with a .obj extension are supported")
		}
	}

	opts, closeFn, err := compilerOptions(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Noticef("parsing scene geometry from: %s", strings.Join(sceneFiles, ", "))
	rawScene, err := reader.ReadGeometry(sceneFiles...)
	if err != nil {
		return err
	}

	sc, err := compiler.Compile(rawScene, opts)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())

	zipFile := ctx.String("out")
	if zipFile == "" {
		zipFile = strings.TrimSuffix(sceneFiles[0], ".obj") + ".zip"
	}
	err = writer.WriteScene(sc, zipFile)
	if err != nil {
		return err
	}

	logger.Noticef("wrote compiled scene to %s", zipFile)
	return nil
}
