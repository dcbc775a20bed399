// Package testing has fixtures shared by the tests of several packages.
package testing

import (
	"crypto/rand"
	mathrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// FrameSize is the size of a packed frame, 96x64 pixels at two bits each.
const FrameSize = 1536

// CreateRandomFrame returns a frame of incompressible noise.
func CreateRandomFrame(t *testing.T) []byte {
	frame := make([]byte, FrameSize)
	_, err := rand.Read(frame)
	require.NoError(t, err, "failed to fill frame with random bytes")
	return frame
}

// CreateCheckerboardFrame returns a frame where every plane byte alternates
// between 0x55 and 0xAA, in blocks of 8x8 pixels.
func CreateCheckerboardFrame() []byte {
	frame := make([]byte, FrameSize)
	for i := range frame {
		column := i / 128
		row := (i % 128) / 2
		if (column+row/8)%2 == 0 {
			frame[i] = 0x55
		} else {
			frame[i] = 0xAA
		}
	}
	return frame
}

// CreateDitheredFrame returns a frame resembling a video frame: flat areas of
// white and black, dithered areas, repeated patterns, and a little noise. The
// same seed always gives the same frame.
func CreateDitheredFrame(seed int64) []byte {
	rng := mathrand.New(mathrand.NewSource(seed))
	frame := make([]byte, FrameSize)

	for start := 0; start < FrameSize; {
		length := 8 + rng.Intn(120)
		if start+length > FrameSize {
			length = FrameSize - start
		}
		region := frame[start : start+length]

		switch rng.Intn(6) {
		case 0:
			// White, the default.
		case 1:
			for i := range region {
				region[i] = 0xFF
			}
		case 2:
			// Dithered gray: one plane solid, the other a pattern.
			pattern := byte(rng.Intn(256))
			for i := range region {
				if i%2 == 0 {
					region[i] = pattern
				} else {
					region[i] = 0xFF
				}
			}
		case 3:
			// Repeats something from earlier in the frame.
			if start > 0 {
				from := rng.Intn(start)
				for i := range region {
					region[i] = frame[from+i%(start-from)]
				}
			}
		case 4:
			pattern := []byte{byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))}
			for i := range region {
				region[i] = pattern[i%len(pattern)]
			}
		default:
			for i := 0; i < len(region) && i < 12; i++ {
				region[i] = byte(rng.Intn(256))
			}
		}
		start += length
	}
	return frame
}
