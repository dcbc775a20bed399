package testing

import (
	"bytes"
	"io"
	"testing"

	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/utilities/archive"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// PageSize is the size of an application page.
const PageSize = 16384

// CreatePreamble returns a stand-in for the player code at the start of the
// first page. Its bytes are never 0xFF, so they can be told apart from unused
// space.
func CreatePreamble(size int) []byte {
	preamble := make([]byte, size)
	for i := range preamble {
		preamble[i] = byte(i % 251)
	}
	return preamble
}

// CreateMemoryImage returns an in-memory stream able to hold `pages` pages.
// Writing past the end of it fails.
func CreateMemoryImage(pages int) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(make([]byte, pages*PageSize))
}

// ReadMemoryImage returns the first `pages` pages of `stream`.
func ReadMemoryImage(t *testing.T, stream io.ReadSeeker, pages int) []byte {
	_, err := stream.Seek(0, io.SeekStart)
	require.NoError(t, err, "failed to rewind image")

	data := make([]byte, pages*PageSize)
	_, err = io.ReadFull(stream, data)
	require.NoError(t, err, "failed to read %d pages from image", pages)
	return data
}

// LoadCompressedImage takes a gzipped application image and returns a stream to
// access the uncompressed data.
//
//   - Writes to the stream do not affect `compressedImageBytes`.
//   - While the stream can be written to, its size is fixed to `pages` pages.
//     Attempting to write past the end of this buffer will trigger an error.
func LoadCompressedImage(t *testing.T, compressedImageBytes []byte, pages int) io.ReadWriteSeeker {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := archive.DecompressToBytes(bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)
	require.Equal(t, pages*PageSize, len(imageBytes), "uncompressed image is wrong size")
	return bytesextra.NewReadWriteSeeker(imageBytes)
}
