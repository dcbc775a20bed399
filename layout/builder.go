// Package layout packs compressed frames into the pages of a calculator
// application.
//
// Each page starts with a four-byte header and a dictionary with two pointers
// per frame, the image and the audio, followed by the frames' data. The first
// page holds the player itself and has no dictionary. Whatever room it has left
// after the player is filled with frames listed in the second page's
// dictionary, so the first two pages are laid out together.

package layout

import (
	"fmt"
	"io"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
)

type builderState int

const (
	stateBootstrap builderState = iota
	stateNormal
	stateFinished
)

// Builder lays out frames as they arrive. Frames are queued until they'd fill a
// page, then as many as fit are written and the rest carried to the next page.
// A page is only written to the output once the next one has been laid out, so
// that Finish can mark the last page.
type Builder struct {
	image        *Image
	observer     vidgen.Observer
	name         string
	firstPage    []byte
	preambleSize int
	firstUsed    int

	state    builderState
	queued   []frame.Record
	estimate int
	target   int
	nextPage int
	held     *page

	frames       int
	imageBytes   int
	audioBytes   int
	cycles       int
	budgetMisses int
}

// NewBuilder creates a builder writing to `output`. `preamble` is the player
// code that starts the first page, and `name` is the application name shown on
// the calculator.
func NewBuilder(
	output io.WriteSeeker,
	preamble []byte,
	name string,
	observer vidgen.Observer,
) (*Builder, error) {
	if len(preamble) <= PageCountOffset {
		return nil, vidgen.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("preamble is too short to hold an application header: %d bytes", len(preamble)))
	}
	if len(preamble) >= PageSize {
		return nil, vidgen.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("preamble leaves no room in the first page: %d bytes", len(preamble)))
	}
	if observer == nil {
		observer = vidgen.NopObserver{}
	}

	firstPage := make([]byte, PageSize)
	for i := range firstPage {
		firstPage[i] = fillByte
	}
	copy(firstPage, preamble)

	return &Builder{
		image:        NewImage(output),
		observer:     observer,
		name:         name,
		firstPage:    firstPage,
		preambleSize: len(preamble),
		firstUsed:    len(preamble),
		state:        stateBootstrap,
		estimate:     len(preamble),
		target:       2 * PageSize,
		nextPage:     1,
	}, nil
}

// Queued is the number of frames waiting for a page.
func (b *Builder) Queued() int {
	return len(b.queued)
}

// Add queues a frame, writing pages if it fills one. It returns an error
// wrapping [vidgen.ErrUnrepresentableLayout] if the frame is too large to fit in
// a page on its own.
func (b *Builder) Add(record frame.Record) error {
	if b.state == stateFinished {
		return vidgen.ErrInvalidArgument.WithMessage("can't add frames to a finished application")
	}
	if record.Size() > PageSize-DictionarySize(1) {
		return vidgen.ErrUnrepresentableLayout.WithMessage(
			fmt.Sprintf(
				"frame %d is %d bytes, a page holds at most %d",
				record.Index,
				record.Size(),
				PageSize-DictionarySize(1),
			),
		)
	}

	b.queued = append(b.queued, record)
	b.estimate += record.Size() + entrySize
	b.frames++
	b.imageBytes += len(record.Image)
	b.audioBytes += len(record.Audio)
	b.cycles += record.Cycles
	if !record.BudgetMet {
		b.budgetMisses++
	}

	for b.estimate >= b.target {
		err := b.flush()
		if err != nil {
			return err
		}
	}
	return nil
}

// Finish writes the remaining frames, marks the last page, then fills in the
// application name and page count and writes the first page. The builder can't
// be used afterwards.
func (b *Builder) Finish() (vidgen.Summary, error) {
	if b.state == stateFinished {
		return vidgen.Summary{}, vidgen.ErrInvalidArgument.WithMessage("application already finished")
	}

	for b.state == stateBootstrap || len(b.queued) > 0 {
		err := b.flush()
		if err != nil {
			return vidgen.Summary{}, err
		}
	}

	b.held.setFlag(FlagLast)
	err := b.write(b.held)
	if err != nil {
		return vidgen.Summary{}, err
	}
	b.held = nil

	pages := b.nextPage
	if pages > 0xFF {
		return vidgen.Summary{}, vidgen.ErrUnrepresentableLayout.WithMessage(
			fmt.Sprintf("application needs %d pages, at most 255 can be numbered", pages))
	}

	copy(b.firstPage[NameOffset:NameOffset+NameLength], encodeName(b.name))
	b.firstPage[PageCountOffset] = byte(pages)

	err = b.image.WritePage(0, b.firstPage)
	if err != nil {
		return vidgen.Summary{}, err
	}
	b.observer.PageFlushed(vidgen.PageStats{Index: 0, Used: b.firstUsed})

	missing := b.image.Missing()
	if len(missing) > 0 {
		return vidgen.Summary{}, vidgen.ErrIOFailed.WithMessage(
			fmt.Sprintf("pages were never written: %v", missing))
	}

	b.state = stateFinished
	return b.summary(pages), nil
}

// summary gives the statistics of the frames added so far.
func (b *Builder) summary(pages int) vidgen.Summary {
	summary := vidgen.Summary{
		Frames:       b.frames,
		Pages:        pages,
		BudgetMisses: b.budgetMisses,
	}
	if b.frames > 0 {
		summary.AverageImageSize = float64(b.imageBytes) / float64(b.frames)
		summary.AverageAudioSize = float64(b.audioBytes) / float64(b.frames)
		summary.AverageCycles = float64(b.cycles) / float64(b.frames)
	}
	return summary
}

func encodeName(name string) []byte {
	encoded := make([]byte, NameLength)
	runes := []rune(name)
	for i := range encoded {
		encoded[i] = ' '
		if i < len(runes) && isAlphanumeric(runes[i]) {
			encoded[i] = byte(runes[i])
		}
	}
	return encoded
}

func isAlphanumeric(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

////////////////////////////////////////////////////////////////////////////////

func (b *Builder) flush() error {
	var p *page
	var written int
	var err error

	if b.state == stateBootstrap {
		p, written, err = b.layoutBootstrap()
	} else {
		p, written, err = b.layoutNormal()
	}
	if err != nil {
		return err
	}

	b.queued = append([]frame.Record{}, b.queued[written:]...)
	b.estimate = headerSize
	for _, record := range b.queued {
		b.estimate += record.Size() + entrySize
	}
	b.target = PageSize
	b.state = stateNormal
	b.nextPage++

	if b.held != nil {
		err = b.write(b.held)
		if err != nil {
			return err
		}
	}
	b.held = p
	return nil
}

func (b *Builder) write(p *page) error {
	err := b.image.WritePage(p.index, p.data)
	if err != nil {
		return err
	}

	b.observer.PageFlushed(vidgen.PageStats{
		Index:     p.index,
		Frames:    p.frames,
		Used:      p.used,
		Bootstrap: p.kind == KindBootstrap,
		Last:      p.isLast(),
	})
	return nil
}

// layoutNormal writes the oldest queued frames that fit into a page. Images
// come first, then audio.
func (b *Builder) layoutNormal() (*page, int, error) {
	count := len(b.queued)
	dataSize := 0
	for _, record := range b.queued {
		dataSize += record.Size()
	}
	for count > 0 && dataSize > PageSize-DictionarySize(count) {
		count--
		dataSize -= b.queued[count].Size()
	}
	if count == 0 {
		return nil, 0, vidgen.ErrUnrepresentableLayout.WithMessage(
			fmt.Sprintf("frame %d doesn't fit in page %d", b.queued[0].Index, b.nextPage))
	}

	p := newPage(b.nextPage, KindNormal, count)
	for i, record := range b.queued[:count] {
		pointer, err := p.append(record.Image)
		if err != nil {
			return nil, 0, err
		}
		p.setEntry(2*i, pointer)
	}
	for i, record := range b.queued[:count] {
		pointer, err := p.append(record.Audio)
		if err != nil {
			return nil, 0, err
		}
		p.setEntry(2*i+1, pointer)
	}
	return p, count, nil
}

// layoutBootstrap fills the tail of the first page with whichever images and
// audio fit best, and writes the rest to the second page after its dictionary.
// Frames are dropped from the end of the queue until the rest fits.
func (b *Builder) layoutBootstrap() (*page, int, error) {
	tail := PageSize - b.preambleSize
	count := len(b.queued)

	var components [][]byte
	var fit Fit
	for {
		components = componentsOf(b.queued[:count])
		sizes := make([]int, len(components))
		rest := 0
		for i, component := range components {
			sizes[i] = len(component)
			rest += len(component)
		}

		fit = FindFit(sizes, tail)
		rest -= fit.Total
		if rest < PageSize-DictionarySize(count) {
			break
		}
		count--
	}

	p := newPage(b.nextPage, KindBootstrap, count)
	p.setFlag(FlagFirst)

	for i, component := range components {
		if !fit.Selected(i) {
			continue
		}
		position, err := appendData(b.firstPage, &b.firstUsed, component)
		if err != nil {
			return nil, 0, err
		}
		p.setEntry(i, Pointer{Offset: position, Region: RegionFirstPage})
	}
	for i, component := range components {
		if fit.Selected(i) {
			continue
		}
		pointer, err := p.append(component)
		if err != nil {
			return nil, 0, err
		}
		p.setEntry(i, pointer)
	}
	return p, count, nil
}

// componentsOf interleaves the images and audio of frames.
func componentsOf(records []frame.Record) [][]byte {
	components := make([][]byte, 0, 2*len(records))
	for _, record := range records {
		components = append(components, record.Image, record.Audio)
	}
	return components
}
