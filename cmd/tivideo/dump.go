package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/audio"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/convert"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/utilities/archive"
)

var dumpFlags = []cli.Flag{
	&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the expanded files to this directory"},
}

var dumpKinds = []string{
	convert.DumpImage,
	convert.DumpCompressedImage,
	convert.DumpAudio,
	convert.DumpCompressedAudio,
}

func expandDump(c *cli.Context) error {
	if c.NArg() != 1 {
		return vidgen.ErrInvalidArgument.WithMessage("expected exactly one dump directory")
	}

	frames, err := checkDump(c.Args().First(), c.String("output"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "All %d dumped frames decode to their source.\n", frames)
	return nil
}

// checkDump decodes the compressed image and audio of every frame in a dump
// directory and compares them with the raw data dumped alongside. If `outDir`
// isn't empty, the expanded files are written there. It returns the number of
// frames checked.
func checkDump(dir, outDir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, convert.DumpImage+"_*.bin.gz"))
	if err != nil {
		return 0, vidgen.ErrInvalidArgument.Wrap(err)
	}

	indices := []int{}
	for _, path := range paths {
		var index int
		_, err := fmt.Sscanf(filepath.Base(path), convert.DumpImage+"_%d.bin.gz", &index)
		if err == nil {
			indices = append(indices, index)
		}
	}
	if len(indices) == 0 {
		return 0, vidgen.ErrInvalidArgument.WithMessage(fmt.Sprintf("no dumped frames in %s", dir))
	}
	sort.Ints(indices)

	if outDir != "" {
		err = os.MkdirAll(outDir, 0o755)
		if err != nil {
			return 0, vidgen.ErrIOFailed.Wrap(err)
		}
	}

	var previousAudio []byte
	previousIndex := -1
	for _, index := range indices {
		data := map[string][]byte{}
		for _, kind := range dumpKinds {
			data[kind], err = archive.ReadFile(convert.DumpPath(dir, kind, index))
			if err != nil {
				return 0, err
			}
			if outDir != "" {
				path := filepath.Join(outDir, fmt.Sprintf("%s_%d.bin", kind, index))
				err = os.WriteFile(path, data[kind], 0o644)
				if err != nil {
					return 0, vidgen.ErrIOFailed.Wrap(err)
				}
			}
		}

		image, _, err := instr.Decode(data[convert.DumpCompressedImage])
		if err != nil {
			return 0, vidgen.ErrMalformedInput.WithMessage(fmt.Sprintf("frame %d image", index)).Wrap(err)
		}
		if !bytes.Equal(image, data[convert.DumpImage]) {
			return 0, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("frame %d: compressed image doesn't decode to the dumped frame", index))
		}

		// Audio deltas start from the previous frame's last sample, so frames
		// after a gap in the dump can't be played back.
		samples := data[convert.DumpAudio]
		var start byte
		canPlay := len(samples) > 0
		switch {
		case index == 0 && canPlay:
			start = samples[0]
		case previousIndex == index-1 && len(previousAudio) > 0:
			start = previousAudio[len(previousAudio)-1]
		default:
			canPlay = false
		}
		if canPlay {
			played, err := audio.Decode(data[convert.DumpCompressedAudio], start, len(samples))
			if err != nil {
				return 0, vidgen.ErrMalformedInput.WithMessage(fmt.Sprintf("frame %d audio", index)).Wrap(err)
			}
			for i, sample := range samples {
				if played[i] != sample&^1 {
					return 0, vidgen.ErrMalformedInput.WithMessage(
						fmt.Sprintf("frame %d: audio sample %d plays as %d, dumped as %d", index, i, played[i], sample))
				}
			}
		}

		previousAudio = samples
		previousIndex = index
	}
	return len(indices), nil
}
