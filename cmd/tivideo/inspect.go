package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/audio"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/layout"
)

var inspectFlags = []cli.Flag{
	&cli.BoolFlag{Name: "decode", Usage: "decode every frame to check the bytecode"},
	&cli.IntFlag{Name: "samples-per-frame", Value: 512, Usage: "audio samples played per frame"},
}

func inspectImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return vidgen.ErrInvalidArgument.WithMessage("expected exactly one image file")
	}

	file, err := os.Open(c.Args().First())
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	app, err := layout.ReadImage(file)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Name: %s\nPages: %d\n", app.Name, app.PageCount)
	for _, info := range app.Pages {
		kind := "normal"
		if info.Bootstrap {
			kind = "bootstrap"
		}
		last := ""
		if info.Last {
			last = ", last"
		}
		fmt.Fprintf(out, "  page %3d: %s%s, %d frames\n", info.Index, kind, last, info.Frames())
		for i := 0; i < info.Frames(); i++ {
			fmt.Fprintf(
				out,
				"    image %s  audio %s\n",
				describePointer(info.Entries[2*i]),
				describePointer(info.Entries[2*i+1]),
			)
		}
	}

	if !c.Bool("decode") {
		return nil
	}

	samples := c.Int("samples-per-frame")
	for i, location := range app.Frames() {
		code, err := app.Resolve(location.Page, location.Image)
		if err != nil {
			return err
		}
		image, imageBytes, err := instr.Decode(code)
		if err != nil {
			return vidgen.ErrMalformedInput.WithMessage(fmt.Sprintf("frame %d image", i)).Wrap(err)
		}
		if len(image) != frame.Size {
			return vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("frame %d decodes to %d bytes", i, len(image)))
		}

		code, err = app.Resolve(location.Page, location.Audio)
		if err != nil {
			return err
		}
		_, err = audio.Decode(code, 0, samples)
		if err != nil {
			return vidgen.ErrMalformedInput.WithMessage(fmt.Sprintf("frame %d audio", i)).Wrap(err)
		}
		fmt.Fprintf(out, "  frame %4d: page %3d, image %4d bytes of bytecode\n", i, location.Page, imageBytes)
	}
	fmt.Fprintf(out, "All %d frames decode.\n", len(app.Frames()))
	return nil
}

func describePointer(pointer layout.Pointer) string {
	where := "this page"
	if pointer.Region == layout.RegionFirstPage {
		where = "page 0"
	}
	return fmt.Sprintf("%#04x (%s)", pointer.Offset, where)
}
