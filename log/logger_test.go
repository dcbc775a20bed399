package log_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, output string) []map[string]any {
	entries := []map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "bad log line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger__BadLevel(t *testing.T) {
	_, err := log.NewLogger("loud", log.FormatJSON)
	assert.ErrorIs(t, err, vidgen.ErrInvalidArgument)
}

func TestLevelFiltering(t *testing.T) {
	logger, err := log.NewLogger("warn", log.FormatJSON)
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	logger = logger.WithOutput(&buffer)
	logger.Info("hidden")
	logger.Warn("shown")

	entries := decodeEntries(t, buffer.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "warn", entries[0]["level"])
}

func TestProgressObserver(t *testing.T) {
	logger, err := log.NewLogger("debug", log.FormatJSON)
	require.NoError(t, err)
	buffer := bytes.Buffer{}
	observer := log.NewProgressObserver(logger.WithOutput(&buffer))
	observer.TotalFrames = 10

	stats := vidgen.FrameStats{Index: 3, ImageSize: 400, AudioSize: 300, Cycles: 120000, Target: 101600}
	observer.FrameCompressed(stats)
	observer.BudgetMissed(stats)
	observer.PageFlushed(vidgen.PageStats{Index: 2, Frames: 11, Used: 16000})
	observer.Finished(vidgen.Summary{Frames: 10, Pages: 3, BudgetMisses: 1})

	entries := decodeEntries(t, buffer.String())
	require.Len(t, entries, 4)

	assert.Equal(t, "frame compressed", entries[0]["message"])
	assert.EqualValues(t, 3, entries[0]["frame"])
	assert.EqualValues(t, 10, entries[0]["total_frames"])

	assert.Equal(t, "warn", entries[1]["level"])
	assert.EqualValues(t, 101600, entries[1]["budget"])

	assert.Equal(t, "page written", entries[2]["message"])
	assert.EqualValues(t, 16000, entries[2]["bytes_used"])

	assert.Equal(t, "conversion finished", entries[3]["message"])
	assert.EqualValues(t, 3, entries[3]["pages"])
}

func TestSugar(t *testing.T) {
	logger, err := log.NewLogger("info", log.FormatConsole)
	require.NoError(t, err)
	buffer := bytes.Buffer{}
	logger.WithOutput(&buffer).Sugar().With("device", "ti84p").Infof("fits in %d pages", 12)

	assert.Contains(t, buffer.String(), "fits in 12 pages")
	assert.Contains(t, buffer.String(), "ti84p")
}
