package layout

import (
	"fmt"
	"io"
	"strings"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// PageInfo is the header and dictionary of a page other than the first.
type PageInfo struct {
	Index     int
	Bootstrap bool
	First     bool
	Last      bool
	// Entries holds two pointers per frame, the image then the audio.
	Entries []Pointer
}

func (info PageInfo) Frames() int {
	return len(info.Entries) / 2
}

// ParsePage reads the header and dictionary of a page, and checks that every
// pointer lands inside the page it refers to, after the dictionary.
func ParsePage(data []byte) (PageInfo, error) {
	if len(data) != PageSize {
		return PageInfo{}, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("page is %d bytes, expected %d", len(data), PageSize))
	}

	info := PageInfo{
		Index: int(data[1]),
		First: data[0]&FlagFirst != 0,
		Last:  data[0]&FlagLast != 0,
	}
	switch data[0] &^ (FlagFirst | FlagLast) {
	case KindNormal:
	case KindBootstrap:
		info.Bootstrap = true
	default:
		return PageInfo{}, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("unrecognized page kind 0x%02x", data[0]))
	}

	dictEnd, err := decodePointer(data[2], data[3])
	if err != nil {
		return PageInfo{}, err
	}
	if dictEnd.Region != RegionCurrentPage || dictEnd.Offset%entrySize != 0 ||
		dictEnd.Offset+headerSize > PageSize {
		return PageInfo{}, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("invalid dictionary end 0x%02x%02x", data[3], data[2]))
	}

	dictSize := dictEnd.Offset + headerSize
	info.Entries = make([]Pointer, dictEnd.Offset/2)
	for i := range info.Entries {
		pointer, err := decodePointer(data[headerSize+2*i], data[headerSize+2*i+1])
		if err != nil {
			return PageInfo{}, err
		}

		switch pointer.Region {
		case RegionCurrentPage:
			if pointer.Offset < dictSize {
				return PageInfo{}, vidgen.ErrMalformedInput.WithMessage(
					fmt.Sprintf("entry %d points into the dictionary: %d", i, pointer.Offset))
			}
		case RegionFirstPage:
			if !info.Bootstrap {
				return PageInfo{}, vidgen.ErrMalformedInput.WithMessage(
					fmt.Sprintf("entry %d of page %d points into the first page", i, info.Index))
			}
		}
		info.Entries[i] = pointer
	}
	return info, nil
}

// Application is a parsed application image.
type Application struct {
	Name      string
	PageCount int
	// Pages has the info of every page but the first, which has no dictionary.
	Pages []PageInfo
	raw   []byte
}

// FrameLocation is where a frame's image and audio are stored.
type FrameLocation struct {
	Page  int
	Image Pointer
	Audio Pointer
}

// ReadImage reads and checks an application written by a Builder.
func ReadImage(input io.Reader) (*Application, error) {
	raw, err := io.ReadAll(input)
	if err != nil {
		return nil, vidgen.ErrIOFailed.Wrap(err)
	}
	if len(raw) < 2*PageSize || len(raw)%PageSize != 0 {
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("image is %d bytes, not a whole number of at least two pages", len(raw)))
	}

	app := &Application{
		Name:      strings.TrimRight(string(raw[NameOffset:NameOffset+NameLength]), " "),
		PageCount: int(raw[PageCountOffset]),
		raw:       raw,
	}
	if app.PageCount != len(raw)/PageSize {
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("header says %d pages, image has %d", app.PageCount, len(raw)/PageSize))
	}

	for index := 1; index < app.PageCount; index++ {
		info, err := ParsePage(raw[index*PageSize : (index+1)*PageSize])
		if err != nil {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("page %d", index)).Wrap(err)
		}
		if info.Index != index {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("page %d is numbered %d", index, info.Index))
		}
		if info.Bootstrap != (index == 1) || info.First != (index == 1) {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("page %d has the wrong kind or flags", index))
		}
		if info.Last != (index == app.PageCount-1) {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("page %d has the wrong last-page flag", index))
		}
		app.Pages = append(app.Pages, info)
	}
	return app, nil
}

// Frames lists where every frame is stored, in playback order.
func (app *Application) Frames() []FrameLocation {
	locations := []FrameLocation{}
	for _, info := range app.Pages {
		for i := 0; i < info.Frames(); i++ {
			locations = append(locations, FrameLocation{
				Page:  info.Index,
				Image: info.Entries[2*i],
				Audio: info.Entries[2*i+1],
			})
		}
	}
	return locations
}

// Resolve returns the bytes from where `pointer` in page `pageIndex` points to
// the end of the page it refers to.
func (app *Application) Resolve(pageIndex int, pointer Pointer) ([]byte, error) {
	if pageIndex < 1 || pageIndex >= app.PageCount {
		return nil, vidgen.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("page %d not in [1, %d)", pageIndex, app.PageCount))
	}

	target := pageIndex
	if pointer.Region == RegionFirstPage {
		target = 0
	}
	if pointer.Offset < 0 || pointer.Offset >= PageSize {
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("offset %d is outside a page", pointer.Offset))
	}
	start := target*PageSize + pointer.Offset
	return app.raw[start : (target+1)*PageSize], nil
}
