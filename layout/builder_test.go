package layout_test

import (
	"bytes"
	"math/rand"
	"testing"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/layout"
	vtesting "github.com/Crazy-Fox-2/TI-Calc-Video-Generator/testing"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/utilities/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageRecorder struct {
	vidgen.NopObserver
	pages []vidgen.PageStats
}

func (r *pageRecorder) PageFlushed(stats vidgen.PageStats) {
	r.pages = append(r.pages, stats)
}

func makeRecord(index, imageSize, audioSize int) frame.Record {
	image := make([]byte, imageSize)
	for i := range image {
		image[i] = byte(index*7 + i)
	}
	audio := make([]byte, audioSize)
	for i := range audio {
		audio[i] = byte(index*13 + i + 100)
	}
	return frame.Record{
		Index:       index,
		Image:       image,
		Audio:       audio,
		SampleCount: audioSize,
		Cycles:      1000 + index,
		BudgetMet:   true,
	}
}

// assertFramesStored reads back an application and checks every frame can be
// found where the dictionaries say it is, in order.
func assertFramesStored(t *testing.T, data []byte, records []frame.Record) *layout.Application {
	app, err := layout.ReadImage(bytes.NewReader(data))
	require.NoError(t, err)

	locations := app.Frames()
	require.Len(t, locations, len(records))
	for i, location := range locations {
		image, err := app.Resolve(location.Page, location.Image)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(image), len(records[i].Image), "frame %d image overflows its page", i)
		assert.Equal(t, records[i].Image, image[:len(records[i].Image)], "frame %d image", i)

		audio, err := app.Resolve(location.Page, location.Audio)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(audio), len(records[i].Audio), "frame %d audio overflows its page", i)
		assert.Equal(t, records[i].Audio, audio[:len(records[i].Audio)], "frame %d audio", i)
	}
	return app
}

func TestBuilder__DefersFrameThatDoesNotFit(t *testing.T) {
	recorder := &pageRecorder{}
	output := vtesting.CreateMemoryImage(3)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(15000), "VIDEO", recorder)
	require.NoError(t, err)

	records := []frame.Record{makeRecord(0, 8990, 10), makeRecord(1, 8990, 10)}
	require.NoError(t, builder.Add(records[0]))
	assert.Equal(t, 1, builder.Queued())

	require.NoError(t, builder.Add(records[1]))
	assert.Equal(t, 1, builder.Queued(), "second frame should have been carried over")
	assert.Empty(t, recorder.pages, "the bootstrap page should be held until the next one is laid out")

	summary, err := builder.Finish()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Pages)
	assert.Equal(t, 2, summary.Frames)
	assert.InDelta(t, 8990, summary.AverageImageSize, 0.001)
	assert.InDelta(t, 10, summary.AverageAudioSize, 0.001)
	assert.InDelta(t, 1000.5, summary.AverageCycles, 0.001)

	data := vtesting.ReadMemoryImage(t, output, 3)
	app := assertFramesStored(t, data, records)
	require.Len(t, app.Pages, 2)
	assert.Equal(t, 1, app.Pages[0].Frames())
	assert.Equal(t, 1, app.Pages[1].Frames())

	// Only the first frame's audio fits in the first page's tail.
	assert.Equal(t, layout.Pointer{Offset: 8, Region: layout.RegionCurrentPage}, app.Pages[0].Entries[0])
	assert.Equal(t, layout.Pointer{Offset: 15000, Region: layout.RegionFirstPage}, app.Pages[0].Entries[1])
	assert.Equal(t, []byte{0xA1, 0x01, 0x04, 0x80, 0x08, 0x80, 0x98, 0x7A}, data[layout.PageSize:layout.PageSize+8])

	assert.Equal(t, layout.Pointer{Offset: 8, Region: layout.RegionCurrentPage}, app.Pages[1].Entries[0])
	assert.Equal(t, layout.Pointer{Offset: 8998, Region: layout.RegionCurrentPage}, app.Pages[1].Entries[1])
	assert.EqualValues(t, 0x52, data[2*layout.PageSize])

	require.Len(t, recorder.pages, 3)
	assert.Equal(t, 1, recorder.pages[0].Index)
	assert.True(t, recorder.pages[0].Bootstrap)
	assert.Equal(t, 8+8990, recorder.pages[0].Used)
	assert.Equal(t, 2, recorder.pages[1].Index)
	assert.True(t, recorder.pages[1].Last)
	assert.Equal(t, 0, recorder.pages[2].Index)
	assert.Equal(t, 15010, recorder.pages[2].Used)
}

func TestBuilder__BootstrapFillsFirstPage(t *testing.T) {
	output := vtesting.CreateMemoryImage(2)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(1000), "VIDEO", nil)
	require.NoError(t, err)

	records := []frame.Record{makeRecord(0, 8900, 100)}
	require.NoError(t, builder.Add(records[0]))
	summary, err := builder.Finish()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pages)

	data := vtesting.ReadMemoryImage(t, output, 2)
	app := assertFramesStored(t, data, records)
	assert.Equal(t, layout.Pointer{Offset: 1000, Region: layout.RegionFirstPage}, app.Pages[0].Entries[0])
	assert.Equal(t, layout.Pointer{Offset: 9900, Region: layout.RegionFirstPage}, app.Pages[0].Entries[1])
	assert.True(t, app.Pages[0].First)
	assert.True(t, app.Pages[0].Last)

	assert.Equal(t, vtesting.CreatePreamble(1000)[:layout.NameOffset], data[:layout.NameOffset])
	assert.EqualValues(t, 2, data[layout.PageCountOffset])
}

func TestBuilder__ManyFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	records := make([]frame.Record, 120)
	for i := range records {
		records[i] = makeRecord(i, 300+rng.Intn(2700), 100+rng.Intn(300))
	}

	recorder := &pageRecorder{}
	output := vtesting.CreateMemoryImage(32)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(4000), "Bad Apple", recorder)
	require.NoError(t, err)

	for _, record := range records {
		require.NoError(t, builder.Add(record))
	}
	summary, err := builder.Finish()
	require.NoError(t, err)
	assert.Equal(t, len(records), summary.Frames)

	data := vtesting.ReadMemoryImage(t, output, summary.Pages)
	app := assertFramesStored(t, data, records)
	assert.Equal(t, "Bad Appl", app.Name)
	assert.Equal(t, summary.Pages, app.PageCount)

	require.Len(t, recorder.pages, summary.Pages)
	for _, stats := range recorder.pages {
		assert.LessOrEqual(t, stats.Used, layout.PageSize, "page %d", stats.Index)
	}

	// Every full page but the last should be reasonably well used.
	for _, stats := range recorder.pages {
		if stats.Index > 1 && !stats.Last {
			assert.Greater(t, stats.Used, layout.PageSize-3500, "page %d", stats.Index)
		}
	}
}

func TestBuilder__NoFrames(t *testing.T) {
	output := vtesting.CreateMemoryImage(2)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(100), "EMPTY", nil)
	require.NoError(t, err)

	summary, err := builder.Finish()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 0, summary.Frames)

	data := vtesting.ReadMemoryImage(t, output, 2)
	assert.Equal(t, []byte{0xA3, 0x01, 0x00, 0x80}, data[layout.PageSize:layout.PageSize+4])
	app := assertFramesStored(t, data, nil)
	assert.Equal(t, "EMPTY", app.Name)
}

func TestBuilder__FrameTooLarge(t *testing.T) {
	builder, err := layout.NewBuilder(vtesting.CreateMemoryImage(2), vtesting.CreatePreamble(100), "BIG", nil)
	require.NoError(t, err)

	err = builder.Add(makeRecord(0, layout.PageSize-8, 1))
	assert.ErrorIs(t, err, vidgen.ErrUnrepresentableLayout)
	assert.Equal(t, 0, builder.Queued())
}

func TestBuilder__AddAfterFinish(t *testing.T) {
	builder, err := layout.NewBuilder(vtesting.CreateMemoryImage(2), vtesting.CreatePreamble(100), "X", nil)
	require.NoError(t, err)
	_, err = builder.Finish()
	require.NoError(t, err)

	assert.ErrorIs(t, builder.Add(makeRecord(0, 10, 10)), vidgen.ErrInvalidArgument)
	_, err = builder.Finish()
	assert.ErrorIs(t, err, vidgen.ErrInvalidArgument)
}

func TestNewBuilder__BadPreamble(t *testing.T) {
	_, err := layout.NewBuilder(vtesting.CreateMemoryImage(2), vtesting.CreatePreamble(0x10), "X", nil)
	assert.ErrorIs(t, err, vidgen.ErrInvalidArgument)

	_, err = layout.NewBuilder(vtesting.CreateMemoryImage(2), vtesting.CreatePreamble(layout.PageSize), "X", nil)
	assert.ErrorIs(t, err, vidgen.ErrInvalidArgument)
}

func TestBuilder__NameIsSanitized(t *testing.T) {
	output := vtesting.CreateMemoryImage(2)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(100), "Hi-Vid", nil)
	require.NoError(t, err)
	_, err = builder.Finish()
	require.NoError(t, err)

	data := vtesting.ReadMemoryImage(t, output, 2)
	assert.Equal(t, []byte("Hi Vid  "), data[layout.NameOffset:layout.NameOffset+layout.NameLength])
}

func TestCompressedImageLoads(t *testing.T) {
	output := vtesting.CreateMemoryImage(2)
	builder, err := layout.NewBuilder(output, vtesting.CreatePreamble(500), "GZ", nil)
	require.NoError(t, err)
	records := []frame.Record{makeRecord(0, 700, 60), makeRecord(1, 900, 40)}
	for _, record := range records {
		require.NoError(t, builder.Add(record))
	}
	_, err = builder.Finish()
	require.NoError(t, err)

	compressed := bytes.Buffer{}
	_, err = archive.Compress(bytes.NewReader(vtesting.ReadMemoryImage(t, output, 2)), &compressed)
	require.NoError(t, err)

	loaded := vtesting.LoadCompressedImage(t, compressed.Bytes(), 2)
	assertFramesStored(t, vtesting.ReadMemoryImage(t, loaded, 2), records)
}
