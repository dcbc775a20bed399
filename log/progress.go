package log

import (
	"go.uber.org/zap"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// ProgressObserver reports conversion progress as log entries. Frames are
// logged at debug level, pages and the summary at info, and budget misses as
// warnings.
type ProgressObserver struct {
	logger *Logger
	// TotalFrames is included in frame entries when it's known.
	TotalFrames int
}

func NewProgressObserver(logger *Logger) *ProgressObserver {
	return &ProgressObserver{logger: logger}
}

func (o *ProgressObserver) FrameCompressed(stats vidgen.FrameStats) {
	fields := []zap.Field{
		zap.Int("frame", stats.Index),
		zap.Int("image_bytes", stats.ImageSize),
		zap.Int("audio_bytes", stats.AudioSize),
		zap.Int("cycles", stats.Cycles),
	}
	if o.TotalFrames > 0 {
		fields = append(fields, zap.Int("total_frames", o.TotalFrames))
	}
	o.logger.Debug("frame compressed", fields...)
}

func (o *ProgressObserver) BudgetMissed(stats vidgen.FrameStats) {
	o.logger.Warn(
		"frame decodes slower than the cycle budget",
		zap.Int("frame", stats.Index),
		zap.Int("cycles", stats.Cycles),
		zap.Int("budget", stats.Target),
	)
}

func (o *ProgressObserver) PageFlushed(stats vidgen.PageStats) {
	o.logger.Info(
		"page written",
		zap.Int("page", stats.Index),
		zap.Int("frames", stats.Frames),
		zap.Int("bytes_used", stats.Used),
		zap.Bool("last", stats.Last),
	)
}

func (o *ProgressObserver) Finished(summary vidgen.Summary) {
	o.logger.Info(
		"conversion finished",
		zap.Int("frames", summary.Frames),
		zap.Int("pages", summary.Pages),
		zap.Float64("average_image_bytes", summary.AverageImageSize),
		zap.Float64("average_audio_bytes", summary.AverageAudioSize),
		zap.Float64("average_cycles", summary.AverageCycles),
		zap.Int("budget_misses", summary.BudgetMisses),
	)
}
