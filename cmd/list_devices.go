package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lbvh/tracer/opencl/device"
	"github.com/urfave/cli"
)

// List available opencl devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer

	clPlatforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	buf.WriteString(fmt.Sprintf("\nSystem provides %d opencl platform(s):\n\n", len(clPlatforms)))
	for pIdx, platformInfo := range clPlatforms {
		buf.WriteString(fmt.Sprintf("[Platform %02d]\n", pIdx))
		buf.WriteString(platformInfo.String())
	}

	logger.Notice(buf.String())
	return nil
}
