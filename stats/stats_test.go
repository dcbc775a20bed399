package stats_test

import (
	"bytes"
	"strings"
	"testing"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	collector := stats.NewCollector()
	var observer vidgen.Observer = collector

	observer.FrameCompressed(vidgen.FrameStats{Index: 0, ImageSize: 100, AudioSize: 50, Cycles: 1000, Target: 2000, BudgetMet: true})
	missed := vidgen.FrameStats{Index: 1, ImageSize: 300, AudioSize: 70, Cycles: 3000, Target: 2000}
	observer.FrameCompressed(missed)
	observer.BudgetMissed(missed)
	observer.PageFlushed(vidgen.PageStats{Index: 1})

	summary := collector.Summary()
	assert.Equal(t, 2, summary.Frames)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, summary.BudgetMisses)
	assert.InDelta(t, 200, summary.AverageImageSize, 0.001)
	assert.InDelta(t, 60, summary.AverageAudioSize, 0.001)
	assert.InDelta(t, 2000, summary.AverageCycles, 0.001)

	rows := collector.Rows()
	require.Len(t, rows, 2)
	assert.False(t, rows[1].BudgetMet)
}

func TestCollector__Empty(t *testing.T) {
	summary := stats.NewCollector().Summary()
	assert.Equal(t, vidgen.Summary{}, summary)
}

func TestCSVRoundTrip(t *testing.T) {
	collector := stats.NewCollector()
	collector.FrameCompressed(vidgen.FrameStats{Index: 0, ImageSize: 100, AudioSize: 50, Cycles: 1000, Target: 2000, BudgetMet: true})
	collector.FrameCompressed(vidgen.FrameStats{Index: 1, ImageSize: 300, AudioSize: 70, Cycles: 3000, Target: 2000})

	buffer := bytes.Buffer{}
	require.NoError(t, collector.WriteCSV(&buffer))
	assert.True(
		t,
		strings.HasPrefix(buffer.String(), "frame,image_bytes,audio_bytes,cycles,budget,budget_met\n"),
		"unexpected header: %q", buffer.String(),
	)

	rows, err := stats.ReadCSV(&buffer)
	require.NoError(t, err)
	assert.Equal(t, collector.Rows(), rows)
}
