// Package convert runs a whole conversion: it reads frames and audio, compresses
// frames in parallel, lays them out in pages, and reports progress.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/config"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/devices"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/layout"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/source"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/stats"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/utilities/archive"
)

// Dependencies replaces the files a conversion would otherwise open based on its
// config. Every field is optional.
type Dependencies struct {
	Frames   source.FrameSource
	Audio    io.ReadSeeker
	Preamble []byte
	Output   io.WriteSeeker
	// Done receives the number of source frames once they've all been written.
	Done     <-chan int
	Observer vidgen.Observer
	Signer   Signer
}

type Result struct {
	vidgen.Summary
	// Warnings wraps [vidgen.ErrBudgetUnreachable] once for every frame that
	// decodes slower than the budget allows, or is nil.
	Warnings error
	// Devices are the calculators the application fits on.
	Devices []devices.Device
}

// Run converts a video as described by `cfg`.
//
// If `ctx` is cancelled, Run stops without writing the first page, so the
// output isn't a valid application. Pages written before that are left as is.
func Run(ctx context.Context, cfg *config.Config, deps Dependencies) (Result, error) {
	err := cfg.Validate()
	if err != nil {
		return Result{}, err
	}

	deviceTable := devices.Predefined()
	if cfg.DevicesPath != "" {
		deviceTable, err = devices.LoadFile(cfg.DevicesPath)
		if err != nil {
			return Result{}, err
		}
	}

	if deps.Frames == nil {
		deps.Frames = source.FrameDir{Dir: cfg.FramesDir, Pattern: cfg.FramePattern}
	}
	if deps.Preamble == nil {
		deps.Preamble, err = os.ReadFile(cfg.BaseApp)
		if err != nil {
			return Result{}, vidgen.ErrIOFailed.WithMessage("reading the base application").Wrap(err)
		}
	}
	if deps.Audio == nil {
		file, err := os.Open(cfg.AudioPath)
		if err != nil {
			return Result{}, vidgen.ErrIOFailed.WithMessage("opening the audio").Wrap(err)
		}
		defer file.Close()
		deps.Audio = file
	}
	if deps.Output == nil {
		file, err := os.Create(cfg.OutputPath)
		if err != nil {
			return Result{}, vidgen.ErrIOFailed.WithMessage("creating the output").Wrap(err)
		}
		defer file.Close()
		deps.Output = file
	}
	if deps.Signer == nil && cfg.Sign {
		deps.Signer = ExternalSigner{Command: cfg.SignCommand, Args: DefaultSignArgs}
	}

	observers := vidgen.Observers{}
	if deps.Observer != nil {
		observers = append(observers, deps.Observer)
	}
	var collector *stats.Collector
	if cfg.StatsPath != "" {
		collector = stats.NewCollector()
		observers = append(observers, collector)
	}
	if cfg.DumpDir != "" {
		err = os.MkdirAll(cfg.DumpDir, 0o755)
		if err != nil {
			return Result{}, vidgen.ErrIOFailed.Wrap(err)
		}
	}

	wav, err := source.OpenWAV(deps.Audio)
	if err != nil {
		return Result{}, err
	}
	err = wav.Skip(cfg.Start * cfg.SamplesPerFrame)
	if err != nil {
		return Result{}, err
	}

	builder, err := layout.NewBuilder(deps.Output, deps.Preamble, cfg.Name, observers)
	if err != nil {
		return Result{}, err
	}

	puller := source.NewPuller(deps.Frames, source.PullerOptions{
		FPS:          cfg.FPS,
		Start:        cfg.Start,
		Duration:     cfg.Duration,
		TotalFrames:  cfg.TotalFrames,
		Done:         deps.Done,
		PollInterval: cfg.PollInterval.Duration,
	})

	run := &conversion{
		cfg:       cfg,
		observers: observers,
		builder:   builder,
	}
	err = run.run(ctx, puller, wav)
	if err != nil {
		return Result{}, err
	}

	summary, err := builder.Finish()
	if err != nil {
		return Result{}, err
	}
	observers.Finished(summary)

	if collector != nil {
		err = collector.WriteFile(cfg.StatsPath)
		if err != nil {
			return Result{}, err
		}
	}

	if deps.Signer != nil {
		if file, ok := deps.Output.(*os.File); ok {
			err = file.Sync()
			if err != nil {
				return Result{}, vidgen.ErrIOFailed.Wrap(err)
			}
		}
		err = deps.Signer.Sign(ctx, cfg.OutputPath)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Summary:  summary,
		Warnings: run.warnings.ErrorOrNil(),
		Devices:  devices.Compatible(deviceTable, summary.Pages),
	}, nil
}

type conversion struct {
	cfg       *config.Config
	observers vidgen.Observers
	builder   *layout.Builder
	warnings  vidgen.Warnings
}

func (c *conversion) run(ctx context.Context, puller *source.Puller, wav *source.WAV) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan frame.Job)
	produced := make(chan error, 1)
	go func() {
		defer close(jobs)
		produced <- c.produce(runCtx, puller, wav, jobs)
	}()

	pool := frame.NewPool(frame.NewCompressor(c.cfg.CycleBudget), c.cfg.Workers)
	err := pool.Run(runCtx, jobs, c.handle)

	cancel()
	produceErr := <-produced
	if ctx.Err() != nil {
		return vidgen.ErrCancelled.Wrap(ctx.Err())
	}
	if err != nil {
		return err
	}
	return produceErr
}

// produce reads frames and their audio and sends them to `jobs` until the
// source runs out.
func (c *conversion) produce(
	ctx context.Context,
	puller *source.Puller,
	wav *source.WAV,
	jobs chan<- frame.Job,
) error {
	var previousSample byte
	for {
		f, err := puller.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		samples, err := wav.Next(c.cfg.SamplesPerFrame)
		if err != nil {
			return vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("no audio for frame %d", f.Index)).Wrap(err)
		}
		if f.Index == 0 {
			previousSample = samples[0]
		}

		if c.cfg.DumpDir != "" {
			err = c.dump(DumpImage, f.Index, f.Image)
			if err == nil {
				err = c.dump(DumpAudio, f.Index, samples)
			}
			if err != nil {
				return err
			}
		}

		job := frame.Job{
			Index:      f.Index,
			Image:      f.Image,
			Samples:    samples,
			AudioStart: previousSample,
		}
		select {
		case jobs <- job:
		case <-ctx.Done():
			return nil
		}
		previousSample = samples[len(samples)-1]
	}
}

func (c *conversion) handle(outcome frame.Outcome) error {
	record := outcome.Record
	if outcome.Err != nil {
		if !errors.Is(outcome.Err, vidgen.ErrBudgetUnreachable) {
			return outcome.Err
		}
		c.warnings.Add(outcome.Err)
	}

	frameStats := vidgen.FrameStats{
		Index:     record.Index,
		ImageSize: len(record.Image),
		AudioSize: len(record.Audio),
		Cycles:    record.Cycles,
		Target:    c.cfg.CycleBudget,
		BudgetMet: record.BudgetMet,
	}
	c.observers.FrameCompressed(frameStats)
	if !record.BudgetMet {
		c.observers.BudgetMissed(frameStats)
	}

	if c.cfg.DumpDir != "" {
		err := c.dump(DumpCompressedImage, record.Index, record.Image)
		if err == nil {
			err = c.dump(DumpCompressedAudio, record.Index, record.Audio)
		}
		if err != nil {
			return err
		}
	}
	return c.builder.Add(record)
}

func (c *conversion) dump(kind string, index int, data []byte) error {
	return archive.WriteFile(DumpPath(c.cfg.DumpDir, kind, index), data)
}

// Kinds of debug dump files: raw and compressed images, raw and compressed
// audio.
const (
	DumpImage           = "img"
	DumpCompressedImage = "imgc"
	DumpAudio           = "aud"
	DumpCompressedAudio = "audc"
)

// DumpPath gives the name of the gzipped dump of one kind of frame data.
func DumpPath(dir, kind string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.bin.gz", kind, index))
}
