// Package audio delta-codes a frame's audio samples for the player.
//
// Samples arrive scaled to 0-127 and are played back at half that resolution.
// The player keeps the previous sample and adds a signed difference to it for
// every sample. Differences come in two forms:
//
//   - Byte runs store one difference per byte, shifted left by one. A set low bit
//     on a byte switches the player to nibble mode after that sample.
//   - Nibble runs store two differences per byte, low nibble first, each in
//     [-7, 7]. A nibble of 8 switches back to byte mode.
//
// Nibble runs are half the size but cost more cycles per sample, so both are
// [instr.Instruction]s and share the frame's cycle budget with the image.

package audio

import (
	"fmt"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
)

// Cycle costs of the player's audio handlers.
const (
	ByteDeltaCycles    = 35
	ByteRunCycles      = 5
	nibbleFirstCycles  = 38 + 26
	nibbleSecondCycles = 76
	nibblePositiveCost = 12
	nibbleNegativeCost = 14
	nibbleEndOnFirst   = 43
	nibbleEndOnSecond  = 55
)

const switchNibble = 0x08

// MinimumCycles gives the cycles needed to play `samples` samples as a single
// byte run, the cheapest form.
func MinimumCycles(samples int) int {
	return ByteDeltaCycles*samples + ByteRunCycles
}

////////////////////////////////////////////////////////////////////////////////

type ByteDelta struct {
	diffs []int8
}

func (b *ByteDelta) Emit(isLast bool) []byte {
	output := make([]byte, len(b.diffs))
	for i, diff := range b.diffs {
		output[i] = byte(diff) << 1
	}
	if len(output) > 0 {
		output[len(output)-1] |= 0x01
	}
	return output
}

func (b *ByteDelta) CompressedSize() int {
	return len(b.diffs)
}

func (b *ByteDelta) DecompressedSize() int {
	return len(b.diffs)
}

func (b *ByteDelta) Decompressed() []byte {
	return diffBytes(b.diffs)
}

func (b *ByteDelta) Cycles() int {
	return MinimumCycles(len(b.diffs))
}

func (b *ByteDelta) IsMinimal() bool {
	return true
}

func (b *ByteDelta) ToMinimal() instr.Instruction {
	return &ByteDelta{diffs: append([]int8{}, b.diffs...)}
}

func (b *ByteDelta) MergeLeft(other instr.Instruction) {
	b.diffs = append(bytesToDiffs(other.Decompressed()), b.diffs...)
}

func (b *ByteDelta) MergeRight(other instr.Instruction) {
	b.diffs = append(b.diffs, bytesToDiffs(other.Decompressed())...)
}

////////////////////////////////////////////////////////////////////////////////

type NibbleDelta struct {
	diffs []int8
}

func (n *NibbleDelta) Emit(isLast bool) []byte {
	output := make([]byte, 0, len(n.diffs)/2+1)
	var current byte
	for i, diff := range n.diffs {
		if i%2 == 0 {
			current = byte(diff) & 0x0F
		} else {
			current |= (byte(diff) << 4) & 0xF0
			output = append(output, current)
		}
	}

	if len(n.diffs)%2 == 1 {
		output = append(output, current|(switchNibble<<4))
	} else if !isLast {
		output = append(output, switchNibble|(switchNibble<<4))
	}
	return output
}

// CompressedSize doesn't count the trailing switch byte of a run with an even
// number of samples.
func (n *NibbleDelta) CompressedSize() int {
	return len(n.diffs) / 2
}

func (n *NibbleDelta) DecompressedSize() int {
	return len(n.diffs)
}

func (n *NibbleDelta) Decompressed() []byte {
	return diffBytes(n.diffs)
}

func (n *NibbleDelta) Cycles() int {
	cycles := 0
	for i := 0; ; i += 2 {
		if i >= len(n.diffs) {
			return cycles + nibbleEndOnFirst
		}
		cycles += nibbleFirstCycles
		if n.diffs[i] >= 0 {
			cycles += nibblePositiveCost
		} else {
			cycles += nibbleNegativeCost
		}

		if i+1 >= len(n.diffs) {
			return cycles + nibbleEndOnSecond
		}
		cycles += nibbleSecondCycles
	}
}

func (n *NibbleDelta) IsMinimal() bool {
	return false
}

func (n *NibbleDelta) ToMinimal() instr.Instruction {
	return &ByteDelta{diffs: append([]int8{}, n.diffs...)}
}

func (n *NibbleDelta) MergeLeft(other instr.Instruction)  {}
func (n *NibbleDelta) MergeRight(other instr.Instruction) {}

////////////////////////////////////////////////////////////////////////////////

func diffBytes(diffs []int8) []byte {
	output := make([]byte, len(diffs))
	for i, diff := range diffs {
		output[i] = byte(diff)
	}
	return output
}

func bytesToDiffs(data []byte) []int8 {
	output := make([]int8, len(data))
	for i, value := range data {
		output[i] = int8(value)
	}
	return output
}

// Compress codes `samples` given the sample that preceded them, `start`. The
// first sample is always a byte difference. It returns the instructions and the
// value to pass as `start` for the next frame.
func Compress(samples []byte, start byte) ([]instr.Instruction, byte) {
	if len(samples) == 0 {
		return []instr.Instruction{}, start
	}

	sequence := []instr.Instruction{}
	previous := int(start / 2)
	inNibbleRun := false
	diffs := []int8{}

	for i, sample := range samples {
		current := int(sample / 2)
		diff := current - previous
		fitsNibble := diff > -8 && diff < 8 && i > 0

		if fitsNibble && !inNibbleRun {
			sequence = append(sequence, &ByteDelta{diffs: diffs})
			diffs = []int8{}
			inNibbleRun = true
		} else if !fitsNibble && inNibbleRun {
			sequence = append(sequence, &NibbleDelta{diffs: diffs})
			diffs = []int8{}
			inNibbleRun = false
		}
		diffs = append(diffs, int8(diff))
		previous = current
	}

	if inNibbleRun {
		sequence = append(sequence, &NibbleDelta{diffs: diffs})
	} else {
		sequence = append(sequence, &ByteDelta{diffs: diffs})
	}
	return sequence, byte(previous * 2)
}

// Bytecode concatenates the bytecode of an audio sequence. Audio isn't
// terminated; the player stops after a fixed number of samples.
func Bytecode(sequence []instr.Instruction) []byte {
	output := []byte{}
	for i, instruction := range sequence {
		output = append(output, instruction.Emit(i == len(sequence)-1)...)
	}
	return output
}

// Decode plays back `count` samples from audio bytecode, starting from `start`.
// Samples are returned at the resolution they're played at, scaled back up to
// 0-127.
func Decode(bytecode []byte, start byte, count int) ([]byte, error) {
	samples := make([]byte, 0, count)
	previous := int(start / 2)
	nibbleMode := false
	pos := 0

	emit := func(diff int) {
		previous += diff
		samples = append(samples, byte(previous*2))
	}

	for len(samples) < count {
		if pos >= len(bytecode) {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("audio ends after %d of %d samples", len(samples), count))
		}
		value := bytecode[pos]
		pos++

		if !nibbleMode {
			emit(int(int8(value) >> 1))
			nibbleMode = value&0x01 != 0
			continue
		}

		low := value & 0x0F
		if low == switchNibble {
			nibbleMode = false
			continue
		}
		emit(nibbleValue(low))
		if len(samples) == count {
			break
		}

		high := value >> 4
		if high == switchNibble {
			nibbleMode = false
			continue
		}
		emit(nibbleValue(high))
	}
	return samples, nil
}

func nibbleValue(nibble byte) int {
	if nibble&0x08 != 0 {
		return int(nibble) - 16
	}
	return int(nibble)
}
