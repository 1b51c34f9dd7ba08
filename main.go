package main

import (
	"os"

	"github.com/achilleasa/lbvh/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lbvh"
	app.Usage = "build bounding volume hierarchies for triangle scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile obj scene geometry into a binary scene archive",
			Description: `
Parse triangle geometry from one or more wavefront obj files, build a BVH tree
using the selected strategy and package the tree in a GPU-friendly format.

The compiled scene data is written to a zip archive which can be inspected
with the info and verify commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output archive; defaults to the first scene file with a .zip extension",
				},
			}, cmd.BuilderFlags...),
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print compiled scene and BVH statistics",
			ArgsUsage: "scene_file.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "verify",
			Usage: "check that a BVH satisfies all tree invariants",
			Description: `
For obj files build a BVH using the selected strategy; for compiled zip
archives load the stored BVH. Then check that every triangle is stored in
exactly one leaf, that node boxes contain their contents and that the
hit/miss links visit every node in pre-order.`,
			ArgsUsage: "scene_file.obj|scene_file.zip",
			Flags:     cmd.BuilderFlags,
			Action:    cmd.VerifyScene,
		},
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
	}

	app.Run(os.Args)
}

