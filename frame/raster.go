package frame

import (
	"fmt"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// Screen geometry of the player. Pixels have four shades, 0 (white) to 3
// (black), stored as two bit planes.
const (
	Width  = 96
	Height = 64
	Shades = 4
	// Size is the number of bytes in a packed frame.
	Size = Width / 8 * Height * 2
)

// Pack converts a row-major raster of shades into the layout the player copies
// to the screen. Each group of eight columns is stored top to bottom, and every
// row of a group is two bytes: the high bits of the eight shades, then the low
// bits.
func Pack(shades []byte) ([]byte, error) {
	if len(shades) != Width*Height {
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("raster has %d pixels, expected %d", len(shades), Width*Height))
	}

	packed := make([]byte, Size)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			shade := shades[y*Width+x]
			if shade >= Shades {
				return nil, vidgen.ErrMalformedInput.WithMessage(
					fmt.Sprintf("pixel (%d, %d) has shade %d", x, y, shade))
			}
			pos := ((x/8)*Height + y) * 2
			packed[pos] = packed[pos]<<1 | shade>>1
			packed[pos+1] = packed[pos+1]<<1 | shade&0x01
		}
	}
	return packed, nil
}

// Unpack is the inverse of Pack.
func Unpack(packed []byte) ([]byte, error) {
	if len(packed) != Size {
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("frame is %d bytes, expected %d", len(packed), Size))
	}

	shades := make([]byte, Width*Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			pos := ((x/8)*Height + y) * 2
			bit := uint(7 - x%8)
			high := (packed[pos] >> bit) & 0x01
			low := (packed[pos+1] >> bit) & 0x01
			shades[y*Width+x] = high<<1 | low
		}
	}
	return shades, nil
}
