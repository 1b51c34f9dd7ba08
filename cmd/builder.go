package cmd

import (
	"fmt"
	"strings"

	"github.com/achilleasa/lbvh/asset/compiler"
	"github.com/achilleasa/lbvh/asset/compiler/bvh"
	"github.com/achilleasa/lbvh/tracer/opencl/device"
	"github.com/achilleasa/lbvh/tracer/opencl/lbvh"
	"github.com/urfave/cli"
)

const gpuStrategyName = "gpu"

// Flags shared by all commands that build a BVH.
var BuilderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "strategy, s",
		Value: bvh.DefaultOptions().Strategy.String(),
		Usage: "BVH construction strategy: median, sah, morton, lbvh or gpu",
	},
	cli.IntFlag{
		Name:  "leaf-size",
		Value: bvh.DefaultOptions().MaxLeafSize,
		Usage: "max number of triangles per leaf (ignored by the lbvh and gpu strategies)",
	},
	cli.BoolFlag{
		Name:  "six-sided",
		Usage: "generate traversal links for the six major ray directions",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "number of workers for parallel build phases; 0 uses all cpus",
	},
	cli.StringFlag{
		Name:  "device, d",
		Usage: "use the first opencl device whose name contains this value for the gpu strategy",
	},
}

// Map command line flags to compiler options. For the gpu strategy, the
// returned close function must be invoked to release the device.
func compilerOptions(ctx *cli.Context) (compiler.Options, func(), error) {
	noop := func() {}
	opts := compiler.Options{
		BVH: bvh.Options{
			MaxLeafSize: ctx.Int("leaf-size"),
			SixSided:    ctx.Bool("six-sided"),
			Workers:     ctx.Int("workers"),
		},
	}

	strategyName := strings.ToLower(ctx.String("strategy"))
	if strategyName != gpuStrategyName {
		strategy, err := bvh.ParseStrategy(strategyName)
		if err != nil {
			return opts, noop, err
		}
		opts.BVH.Strategy = strategy
		return opts, noop, nil
	}

	dev, err := findDevice(ctx.String("device"))
	if err != nil {
		return opts, noop, err
	}

	logger.Noticef("using opencl device %q", dev.Name)
	opts.BVH.Strategy = bvh.StrategyLBVH
	opts.BVH.MaxLeafSize = 1
	opts.StrategyName = gpuStrategyName
	builder, err := lbvh.NewBuilder(dev, opts.BVH)
	if err != nil {
		dev.Close()
		return opts, noop, err
	}
	opts.Builder = builder

	return opts, func() {
		builder.Close()
		dev.Close()
	}, nil
}

// Find an opencl device whose name contains the given value. GPU devices are
// preferred over CPU devices.
func findDevice(name string) (*device.Device, error) {
	for _, devType := range []device.DeviceType{device.GpuDevice, device.AllDevices} {
		devList, err := device.SelectDevices(devType, name)
		if err != nil {
			return nil, err
		}

		if len(devList) != 0 {
			return devList[0], nil
		}
	}

	if name != "" {
		return nil, fmt.Errorf("no opencl device matching %q found", name)
	}
	return nil, fmt.Errorf("no suitable opencl device found")
}
