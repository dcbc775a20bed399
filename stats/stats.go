// Package stats collects per-frame statistics during a conversion and exports
// them as CSV.
package stats

import (
	"fmt"
	"io"
	"os"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/gocarina/gocsv"
)

// Row is the statistics of one frame.
type Row struct {
	Frame      int  `csv:"frame"`
	ImageBytes int  `csv:"image_bytes"`
	AudioBytes int  `csv:"audio_bytes"`
	Cycles     int  `csv:"cycles"`
	Budget     int  `csv:"budget"`
	BudgetMet  bool `csv:"budget_met"`
}

// Collector is an observer recording every frame and page of a conversion.
type Collector struct {
	rows       []Row
	pages      int
	imageBytes int
	audioBytes int
	cycles     int
	misses     int
}

func NewCollector() *Collector {
	return &Collector{rows: []Row{}}
}

func (c *Collector) FrameCompressed(stats vidgen.FrameStats) {
	c.rows = append(c.rows, Row{
		Frame:      stats.Index,
		ImageBytes: stats.ImageSize,
		AudioBytes: stats.AudioSize,
		Cycles:     stats.Cycles,
		Budget:     stats.Target,
		BudgetMet:  stats.BudgetMet,
	})
	c.imageBytes += stats.ImageSize
	c.audioBytes += stats.AudioSize
	c.cycles += stats.Cycles
}

func (c *Collector) BudgetMissed(vidgen.FrameStats) {
	c.misses++
}

func (c *Collector) PageFlushed(vidgen.PageStats) {
	c.pages++
}

func (c *Collector) Finished(vidgen.Summary) {}

// Rows returns the frames recorded so far, in the order they were compressed.
func (c *Collector) Rows() []Row {
	return append([]Row{}, c.rows...)
}

// Summary gives the running totals. It can be called before the conversion is
// finished.
func (c *Collector) Summary() vidgen.Summary {
	summary := vidgen.Summary{
		Frames:       len(c.rows),
		Pages:        c.pages,
		BudgetMisses: c.misses,
	}
	if len(c.rows) > 0 {
		frames := float64(len(c.rows))
		summary.AverageImageSize = float64(c.imageBytes) / frames
		summary.AverageAudioSize = float64(c.audioBytes) / frames
		summary.AverageCycles = float64(c.cycles) / frames
	}
	return summary
}

// WriteCSV writes one line per frame, with a header.
func (c *Collector) WriteCSV(output io.Writer) error {
	err := gocsv.Marshal(c.rows, output)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	return nil
}

func (c *Collector) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return vidgen.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	err = c.WriteCSV(file)
	if err != nil {
		return vidgen.ErrIOFailed.WithMessage(fmt.Sprintf("writing %s", path)).Wrap(err)
	}
	return nil
}

// ReadCSV reads rows written by WriteCSV.
func ReadCSV(input io.Reader) ([]Row, error) {
	rows := []Row{}
	err := gocsv.Unmarshal(input, &rows)
	if err != nil {
		return nil, vidgen.ErrMalformedInput.Wrap(err)
	}
	return rows, nil
}
