// Package source reads the frames and audio a conversion starts from: frames
// rasterised by an external tool into a directory, and a PCM WAV file.
package source

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

const (
	pcmFormat   = 1
	wavChannels = 1
	wavBitDepth = 16
)

// WAV reads samples from a mono 16-bit PCM WAV file, scaled down to 0-127. Only
// the high byte of each sample is used.
type WAV struct {
	decoder *wav.Decoder
	buffer  *audio.IntBuffer
	read    int
}

// OpenWAV walks the chunks of a WAV stream up to the start of its sample data.
// Anything other than mono 16-bit PCM fails with [vidgen.ErrMalformedInput].
func OpenWAV(input io.ReadSeeker) (*WAV, error) {
	decoder := wav.NewDecoder(input)
	err := decoder.FwdToPCM()
	if err == nil {
		err = decoder.Err()
	}
	if err != nil {
		return nil, vidgen.ErrMalformedInput.WithMessage("unreadable WAV stream").Wrap(err)
	}
	if decoder.PCMChunk == nil {
		return nil, vidgen.ErrMalformedInput.WithMessage("WAV stream has no data chunk")
	}

	switch {
	case decoder.WavAudioFormat != pcmFormat:
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("WAV audio format is %d, expected PCM", decoder.WavAudioFormat))
	case decoder.NumChans != wavChannels:
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("WAV audio has %d channels, expected mono", decoder.NumChans))
	case decoder.BitDepth != wavBitDepth:
		return nil, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("WAV audio is %d-bit, expected 16-bit", decoder.BitDepth))
	}

	return &WAV{
		decoder: decoder,
		buffer:  &audio.IntBuffer{Format: decoder.Format()},
	}, nil
}

// Next reads `count` samples. It fails with [vidgen.ErrMalformedInput] if the
// stream ends first.
func (w *WAV) Next(count int) ([]byte, error) {
	samples := make([]byte, 0, count)
	for len(samples) < count {
		w.buffer.Data = make([]int, count-len(samples))
		n, err := w.decoder.PCMBuffer(w.buffer)
		if err != nil {
			return nil, vidgen.ErrIOFailed.Wrap(err)
		}
		if n == 0 {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("audio ends after %d samples, needed %d more", w.read+len(samples), count-len(samples)))
		}
		for _, value := range w.buffer.Data[:n] {
			samples = append(samples, byte(((value>>8)+128)/2))
		}
	}
	w.read += count
	return samples, nil
}

// Skip discards `count` samples.
func (w *WAV) Skip(count int) error {
	_, err := w.Next(count)
	return err
}

// Read is the number of samples read so far.
func (w *WAV) Read() int {
	return w.read
}
