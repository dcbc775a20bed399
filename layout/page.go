package layout

import (
	"fmt"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/noxer/bytewriter"
)

// PageSize is the size of an application page on the calculator.
const PageSize = 16384

// Header bytes and flags. The first byte of a page is its kind plus any flags,
// the second its index, and the next two point at the end of the dictionary.
const (
	KindNormal    = 0x50
	KindBootstrap = 0xA0
	FlagFirst     = 0x01
	FlagLast      = 0x02
	headerSize    = 4
	entrySize     = 4
)

// Region is added to the high byte of a pointer to say which page it refers to,
// as the player maps the first page at 0x4000 and the current page at 0x8000.
type Region byte

const (
	RegionFirstPage   Region = 0x40
	RegionCurrentPage Region = 0x80
)

// Offsets of the application name and the page count in the first page.
const (
	NameOffset      = 0x0C
	NameLength      = 8
	PageCountOffset = 0x16
)

const fillByte = 0xFF

// DictionarySize is the size of the header and dictionary of a page holding
// `frames` frames.
func DictionarySize(frames int) int {
	return entrySize*frames + headerSize
}

// Pointer is a dictionary entry.
type Pointer struct {
	Offset int
	Region Region
}

func (p Pointer) encode() [2]byte {
	return [2]byte{byte(p.Offset % 256), byte(p.Offset/256) + byte(p.Region)}
}

func decodePointer(low, high byte) (Pointer, error) {
	var region Region
	switch {
	case high >= byte(RegionCurrentPage) && high < byte(RegionCurrentPage)+0x40:
		region = RegionCurrentPage
	case high >= byte(RegionFirstPage) && high < byte(RegionFirstPage)+0x40:
		region = RegionFirstPage
	default:
		return Pointer{}, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("pointer 0x%02x%02x isn't in a mapped page", high, low))
	}
	return Pointer{
		Offset: int(high-byte(region))<<8 | int(low),
		Region: region,
	}, nil
}

// page is a page being assembled. Data is written sequentially after the
// dictionary; writes past the end of the page fail.
type page struct {
	index  int
	kind   byte
	frames int
	data   []byte
	used   int
}

func newPage(index int, kind byte, frames int) *page {
	p := &page{
		index:  index,
		kind:   kind,
		frames: frames,
		data:   make([]byte, PageSize),
	}
	for i := range p.data {
		p.data[i] = fillByte
	}

	dictEnd := DictionarySize(frames) - headerSize
	p.data[0] = kind
	p.data[1] = byte(index)
	p.data[2] = byte(dictEnd % 256)
	p.data[3] = byte(dictEnd/256) + byte(RegionCurrentPage)
	p.used = DictionarySize(frames)
	return p
}

func (p *page) setFlag(flag byte) {
	p.data[0] |= flag
}

func (p *page) isLast() bool {
	return p.data[0]&FlagLast != 0
}

// setEntry writes a pointer into dictionary slot `slot`. Every frame has two
// slots, the image then the audio.
func (p *page) setEntry(slot int, pointer Pointer) {
	encoded := pointer.encode()
	p.data[headerSize+2*slot] = encoded[0]
	p.data[headerSize+2*slot+1] = encoded[1]
}

// appendData writes `data` to the next free position of `buffer` and returns the
// position it was written to.
func appendData(buffer []byte, used *int, data []byte) (int, error) {
	writer := bytewriter.New(buffer[*used:])
	n, err := writer.Write(data)
	if err != nil || n != len(data) {
		return 0, vidgen.ErrUnrepresentableLayout.WithMessage(
			fmt.Sprintf(
				"%d bytes at offset %d overflow the page by %d",
				len(data),
				*used,
				*used+len(data)-len(buffer),
			),
		)
	}

	position := *used
	*used += len(data)
	return position, nil
}

func (p *page) append(data []byte) (Pointer, error) {
	position, err := appendData(p.data, &p.used, data)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{Offset: position, Region: RegionCurrentPage}, nil
}
