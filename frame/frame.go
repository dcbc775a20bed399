// Package frame compresses one frame's image and audio into the bytecode the
// player decodes, within the player's per-frame cycle budget.

package frame

import (
	"errors"
	"fmt"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/audio"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/cyclelimit"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/graph"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
)

// DefaultBudget is the number of cycles the player can spend decoding the image
// and audio of a single frame at 20 frames per second.
const DefaultBudget = 101600

// Record is a compressed frame, ready for the page layout.
type Record struct {
	Index int
	// Image is terminated bytecode.
	Image []byte
	// Audio is unterminated; the player stops after SampleCount samples.
	Audio       []byte
	SampleCount int
	Cycles      int
	BudgetMet   bool
}

// Size is the number of bytes the frame takes up in a page.
func (r Record) Size() int {
	return len(r.Image) + len(r.Audio)
}

type Compressor struct {
	Budget int
	// Families creates the instruction families used for each image. It's
	// called once per frame so compressors can run concurrently.
	Families func() []instr.Family
}

func NewCompressor(budget int) *Compressor {
	return &Compressor{
		Budget:   budget,
		Families: instr.DefaultFamilies,
	}
}

// Compress compiles the image, codes the audio, then reduces both together until
// they fit the cycle budget. `audioStart` is the last audio sample of the
// previous frame, or the first sample of this one for the first frame.
//
// If the budget can't be met, the record is still returned, along with an error
// wrapping [vidgen.ErrBudgetUnreachable]. Any other error means the record is
// unusable.
func (c *Compressor) Compress(index int, image, samples []byte, audioStart byte) (Record, error) {
	if len(image) != Size {
		return Record{}, vidgen.ErrMalformedInput.WithMessage(
			fmt.Sprintf("frame %d: image is %d bytes, expected %d", index, len(image), Size))
	}

	imageSequence := graph.Compile(image, c.Families())
	audioSequence, _ := audio.Compress(samples, audioStart)
	streams := [][]instr.Instruction{imageSequence, audioSequence}

	result, err := cyclelimit.Reduce(streams, c.Budget)
	record := Record{
		Index:       index,
		Image:       instr.Bytecode(streams[0]),
		Audio:       audio.Bytecode(streams[1]),
		SampleCount: len(samples),
		Cycles:      result.Total,
		BudgetMet:   result.Met(),
	}

	if err != nil {
		if errors.Is(err, vidgen.ErrBudgetUnreachable) {
			return record, vidgen.ErrBudgetUnreachable.WithMessage(
				fmt.Sprintf("frame %d: %d cycles over", index, result.Total-result.Target))
		}
		return Record{}, err
	}
	return record, nil
}
