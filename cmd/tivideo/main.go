package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

func main() {
	app := cli.App{
		Name:  "tivideo",
		Usage: "Convert videos into applications for TI-83+ and TI-84+ calculators",
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "Compress frames and audio into an application",
				Flags:  convertFlags,
				Action: convertVideo,
			},
			{
				Name:      "inspect",
				Usage:     "Check an application image and describe its pages",
				ArgsUsage: "IMAGE_FILE",
				Flags:     inspectFlags,
				Action:    inspectImage,
			},
			{
				Name:      "dump",
				Usage:     "Expand the frames written by convert --dump-dir and check they decode",
				ArgsUsage: "DUMP_DIR",
				Flags:     dumpFlags,
				Action:    expandDump,
			},
			{
				Name:   "devices",
				Usage:  "List the calculators and how much space they have",
				Flags:  devicesFlags,
				Action: listDevices,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		stop()
		cli.HandleExitCoder(cli.Exit(fmt.Sprintf("fatal error: %s", err.Error()), exitCode(err)))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, vidgen.ErrInvalidArgument):
		return 2
	case errors.Is(err, vidgen.ErrMalformedInput):
		return 3
	case errors.Is(err, vidgen.ErrUnrepresentableLayout):
		return 4
	case errors.Is(err, vidgen.ErrCancelled):
		return 130
	default:
		return 1
	}
}
