// Package vidgen converts a video into a paged application for the TI-83+ and
// TI-84+ family of graphing calculators.
//
// Each frame's image and audio are compiled into a small bytecode the player
// decodes in real time, and the frames are then packed into 16 KiB pages. The
// packages under this module are:
//
//   - instr: the instruction families and their bytecode.
//   - graph: the shortest-path compiler choosing instructions for an image.
//   - audio: the delta coder for a frame's audio.
//   - cyclelimit: trades size for speed until a frame decodes in time.
//   - frame: ties the above together for one frame, and runs frames in parallel.
//   - layout: packs compressed frames into application pages.
//   - source, convert: the pipeline around the core.

package vidgen

// FrameStats describes a frame once it has been compressed.
type FrameStats struct {
	Index     int
	ImageSize int
	AudioSize int
	Cycles    int
	// Target is the cycle budget the frame was compressed against.
	Target    int
	BudgetMet bool
}

// PageStats describes a page once it has been written to the output.
type PageStats struct {
	Index  int
	Frames int
	// Used is the number of bytes of the page holding the header, dictionary,
	// and frame data. For the first page, it's the player plus the frame data
	// after it.
	Used      int
	Bootstrap bool
	Last      bool
}

// Summary holds the aggregate statistics of a finished conversion.
type Summary struct {
	Frames           int
	Pages            int
	AverageImageSize float64
	AverageAudioSize float64
	AverageCycles    float64
	// BudgetMisses is the number of frames whose cycle budget couldn't be met.
	BudgetMisses int
}

// Observer receives progress notifications during a conversion. Calls are made
// from a single goroutine, in order.
type Observer interface {
	FrameCompressed(stats FrameStats)
	PageFlushed(stats PageStats)
	// BudgetMissed is called in addition to FrameCompressed for frames that
	// decode slower than the budget allows.
	BudgetMissed(stats FrameStats)
	Finished(summary Summary)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) FrameCompressed(FrameStats) {}
func (NopObserver) PageFlushed(PageStats)      {}
func (NopObserver) BudgetMissed(FrameStats)    {}
func (NopObserver) Finished(Summary)           {}

// Observers sends every notification to each of its observers in turn.
type Observers []Observer

func (o Observers) FrameCompressed(stats FrameStats) {
	for _, observer := range o {
		observer.FrameCompressed(stats)
	}
}

func (o Observers) PageFlushed(stats PageStats) {
	for _, observer := range o {
		observer.PageFlushed(stats)
	}
}

func (o Observers) BudgetMissed(stats FrameStats) {
	for _, observer := range o {
		observer.BudgetMissed(stats)
	}
}

func (o Observers) Finished(summary Summary) {
	for _, observer := range o {
		observer.Finished(summary)
	}
}
