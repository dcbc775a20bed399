// Package archive gzips the debug dumps written during a conversion, such as
// each frame's raw and compressed data, and reads them back.
package archive

import (
	"bytes"
	"io"
	"os"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/klauspost/compress/gzip"
)

// Compress gzips everything from `input` into `output`.
//
// The returned int64 gives the number of uncompressed bytes read from `input`.
// If an error occurred, the value is undefined and should not be used.
func Compress(input io.Reader, output io.Writer) (int64, error) {
	// Dumps are small, so the slowest level costs nothing noticeable.
	gzWriter, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(gzWriter, input)
	if err != nil {
		gzWriter.Close()
		return n, err
	}
	return n, gzWriter.Close()
}

// Decompress takes gzipped data and writes the original bytes to `output`.
//
// The returned int64 gives the number of bytes written to the output. If an
// error occurred, the value is undefined and should not be used.
func Decompress(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return io.Copy(output, gzReader)
}

// DecompressToBytes is a convenience wrapper around [Decompress] returning the
// data in a new slice.
func DecompressToBytes(input io.Reader) ([]byte, error) {
	buffer := bytes.Buffer{}
	_, err := Decompress(input, &buffer)
	if err != nil {
		return nil, err
	}

	output := make([]byte, buffer.Len())
	copy(output, buffer.Bytes())
	return output, nil
}

// WriteFile gzips `data` into a new file at `path`.
func WriteFile(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	_, err = Compress(bytes.NewReader(data), file)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ReadFile reads a file written by [WriteFile].
func ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, vidgen.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	data, err := DecompressToBytes(file)
	if err != nil {
		return nil, vidgen.ErrMalformedInput.Wrap(err)
	}
	return data, nil
}
