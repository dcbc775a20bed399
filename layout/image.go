package layout

import (
	"fmt"
	"io"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/boljen/go-bitmap"
)

const initialPageCapacity = 32

// Image writes pages of an application to a seekable stream in any order, and
// keeps track of which ones have been written.
type Image struct {
	output   io.WriteSeeker
	written  bitmap.Bitmap
	capacity int
	pages    int
}

func NewImage(output io.WriteSeeker) *Image {
	return &Image{
		output:   output,
		written:  bitmap.New(initialPageCapacity),
		capacity: initialPageCapacity,
	}
}

// WritePage writes a full page at its position in the output.
func (img *Image) WritePage(index int, data []byte) error {
	if index < 0 {
		return vidgen.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("invalid page index: %d", index))
	}
	if len(data) != PageSize {
		return vidgen.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("page %d is %d bytes, expected %d", index, len(data), PageSize))
	}

	_, err := img.output.Seek(int64(index)*PageSize, io.SeekStart)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	_, err = img.output.Write(data)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}

	img.grow(index + 1)
	img.written.Set(index, true)
	if index >= img.pages {
		img.pages = index + 1
	}
	return nil
}

func (img *Image) grow(pages int) {
	if pages <= img.capacity {
		return
	}

	newCapacity := img.capacity
	for newCapacity < pages {
		newCapacity *= 2
	}
	newWritten := bitmap.New(newCapacity)
	copy(newWritten, img.written)
	img.written = newWritten
	img.capacity = newCapacity
}

// Written returns true if the page at `index` has been written.
func (img *Image) Written(index int) bool {
	if index < 0 || index >= img.pages {
		return false
	}
	return img.written.Get(index)
}

// Pages is one more than the index of the highest page written.
func (img *Image) Pages() int {
	return img.pages
}

// Missing returns the indices of the pages below Pages() that haven't been
// written.
func (img *Image) Missing() []int {
	missing := []int{}
	for i := 0; i < img.pages; i++ {
		if !img.written.Get(i) {
			missing = append(missing, i)
		}
	}
	return missing
}
