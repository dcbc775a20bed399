package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
)

// FrameSource gives access to numbered source frames, which may still be
// appearing while they're read.
type FrameSource interface {
	// Exists returns true if frame `n` is available.
	Exists(n int) bool
	// Read returns frame `n` packed for the player.
	Read(n int) ([]byte, error)
}

// FrameDir reads frames from files in a directory. A file holds either a frame
// already packed for the player, or one byte per pixel with shades 0-3 in row
// order, which is packed when it's read.
type FrameDir struct {
	Dir string
	// Pattern is the file name format, with %d standing for the frame number.
	Pattern string
}

func (d FrameDir) Path(n int) string {
	return filepath.Join(d.Dir, fmt.Sprintf(d.Pattern, n))
}

func (d FrameDir) Exists(n int) bool {
	_, err := os.Stat(d.Path(n))
	return err == nil
}

func (d FrameDir) Read(n int) ([]byte, error) {
	path := d.Path(n)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("frame %d is missing: %s", n, path))
		}
		return nil, vidgen.ErrIOFailed.Wrap(err)
	}

	switch len(data) {
	case frame.Size:
		return data, nil
	case frame.Width * frame.Height:
		packed, err := frame.Pack(data)
		if err != nil {
			return nil, vidgen.ErrMalformedInput.WithMessage(path).Wrap(err)
		}
		return packed, nil
	default:
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf(
				"%s is %d bytes, expected %d (packed) or %d (one byte per pixel)",
				path,
				len(data),
				frame.Size,
				frame.Width*frame.Height,
			),
		)
	}
}
