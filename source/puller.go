package source

import (
	"context"
	"io"
	"time"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// PlaybackFPS is the frame rate of the player.
const PlaybackFPS = 20

type PullerOptions struct {
	// FPS is the frame rate of the source frames.
	FPS float64
	// Start is the number of output frames to skip.
	Start int
	// Duration is the most output frames to produce, or 0 for no limit.
	Duration int
	// TotalFrames is the number of source frames, if known.
	TotalFrames int
	// Done receives the number of source frames once the tool writing them has
	// finished. Until then, a frame is only read once the one after it exists.
	// If Done is nil and TotalFrames is 0, frames are read until one is missing.
	Done         <-chan int
	PollInterval time.Duration
}

// Frame is a source frame mapped to its place in the output.
type Frame struct {
	Index       int
	SourceFrame int
	Image       []byte
}

// Puller hands out frames in order, resampled from the source frame rate to
// PlaybackFPS, waiting for frames that are still being written.
type Puller struct {
	frames  FrameSource
	fps     float64
	start   int
	limit   int
	done    <-chan int
	waiting bool
	poll    time.Duration
	current int
}

func NewPuller(frames FrameSource, options PullerOptions) *Puller {
	p := &Puller{
		frames: frames,
		fps:    options.FPS,
		start:  options.Start,
		limit:  -1,
		done:   options.Done,
		poll:   options.PollInterval,
	}
	if options.Duration > 0 {
		p.limit = options.Duration
	}
	if p.poll <= 0 {
		p.poll = 400 * time.Millisecond
	}

	if options.TotalFrames > 0 {
		p.setTotal(options.TotalFrames)
	} else {
		p.waiting = options.Done != nil
	}
	return p
}

func (p *Puller) setTotal(total int) {
	available := int(float64(total)*PlaybackFPS/p.fps) - p.start
	if available < 0 {
		available = 0
	}
	if p.limit < 0 || p.limit > available {
		p.limit = available
	}
	p.waiting = false
	p.done = nil
}

// Limit is the number of frames that will be produced, or -1 if it isn't known
// yet.
func (p *Puller) Limit() int {
	return p.limit
}

// SourceFrame gives the number of the source frame shown at output frame
// `index`. Source frames are numbered from 1.
func (p *Puller) SourceFrame(index int) int {
	return int(float64(index+p.start)*p.fps/PlaybackFPS) + 1
}

// Next returns the next frame. It returns io.EOF once there are no more frames,
// and an error wrapping [vidgen.ErrCancelled] if `ctx` is cancelled while
// waiting.
func (p *Puller) Next(ctx context.Context) (Frame, error) {
	source := p.SourceFrame(p.current)

	for p.waiting {
		select {
		case total, ok := <-p.done:
			if ok {
				p.setTotal(total)
			} else {
				p.waiting = false
				p.done = nil
			}
			continue
		default:
		}

		if p.frames.Exists(source + 1) {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return Frame{}, vidgen.ErrCancelled.Wrap(err)
		}
	}

	if p.limit >= 0 && p.current >= p.limit {
		return Frame{}, io.EOF
	}
	if p.limit < 0 && !p.waiting && !p.frames.Exists(source) {
		return Frame{}, io.EOF
	}

	image, err := p.frames.Read(source)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{Index: p.current, SourceFrame: source, Image: image}
	p.current++
	return frame, nil
}

func (p *Puller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.poll)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
