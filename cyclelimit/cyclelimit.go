// Package cyclelimit trades compression for decode time. The player has a fixed
// time slice per frame, so the instructions of every component of a frame must
// fit in a cycle budget together.
//
// The reducer is greedy: it keeps converting the instruction with the worst
// cycles-per-byte ratio into a literal run, merging it with literal neighbours,
// until the total fits.

package cyclelimit

import (
	"fmt"
	"math"
	"sort"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
)

type Result struct {
	// Total is the number of cycles after reduction.
	Total  int
	Target int
	// Steps is the number of instructions converted.
	Steps int
}

// Met reports whether the budget was reached.
func (r Result) Met() bool {
	return r.Total <= r.Target
}

type Option func(*reducer)

// WithStepHook registers a function called with the running total after every
// conversion.
func WithStepHook(hook func(total int)) Option {
	return func(r *reducer) {
		r.onStep = hook
	}
}

type rankEntry struct {
	stream int
	index  int
	cycles int
	ratio  float64
}

type reducer struct {
	streams [][]instr.Instruction
	ranking []rankEntry
	total   int
	onStep  func(total int)
}

// TotalCycles sums the cycles of every instruction in every stream.
func TotalCycles(streams [][]instr.Instruction) int {
	total := 0
	for _, stream := range streams {
		total += instr.TotalCycles(stream)
	}
	return total
}

// Reduce converts instructions in `streams` in place until their combined cycle
// cost is at most `target`. Instructions are replaced and merged but never
// reordered, so every stream still decodes to the same bytes.
//
// If every instruction is minimal and the total is still over the target, the
// streams are left in their cheapest form and [vidgen.ErrBudgetUnreachable] is
// returned along with the result.
func Reduce(streams [][]instr.Instruction, target int, options ...Option) (Result, error) {
	r := &reducer{streams: streams}
	for _, option := range options {
		option(r)
	}
	r.rank()

	result := Result{Target: target}
	for r.total > target {
		if len(r.ranking) == 0 {
			result.Total = r.total
			return result, vidgen.ErrBudgetUnreachable.WithMessage(
				fmt.Sprintf("achieved %d cycles, target %d", r.total, target))
		}

		worst := r.ranking[len(r.ranking)-1]
		r.ranking = r.ranking[:len(r.ranking)-1]
		if r.streams[worst.stream][worst.index].IsMinimal() {
			continue
		}
		r.convert(worst)
		result.Steps++
		if r.onStep != nil {
			r.onStep(r.total)
		}
	}

	result.Total = r.total
	return result, nil
}

func ratioOf(instruction instr.Instruction) float64 {
	if instruction.DecompressedSize() == 0 {
		return math.Inf(1)
	}
	return float64(instruction.Cycles()) / float64(instruction.DecompressedSize())
}

// rank lists every instruction from best to worst ratio. Equal ratios keep
// stream order.
func (r *reducer) rank() {
	r.ranking = nil
	r.total = 0
	for streamIndex, stream := range r.streams {
		for index, instruction := range stream {
			cycles := instruction.Cycles()
			r.ranking = append(r.ranking, rankEntry{
				stream: streamIndex,
				index:  index,
				cycles: cycles,
				ratio:  ratioOf(instruction),
			})
			r.total += cycles
		}
	}
	sort.SliceStable(r.ranking, func(i, j int) bool {
		return r.ranking[i].ratio < r.ranking[j].ratio
	})
}

func (r *reducer) convert(worst rankEntry) {
	stream := r.streams[worst.stream]
	index := worst.index

	r.total -= worst.cycles
	replacement := stream[index].ToMinimal()

	if index > 0 && stream[index-1].IsMinimal() {
		left := stream[index-1]
		r.total -= left.Cycles()
		replacement.MergeLeft(left)
		stream = r.remove(worst.stream, stream, index-1)
		index--
	}

	if index < len(stream)-1 && stream[index+1].IsMinimal() {
		right := stream[index+1]
		r.total -= right.Cycles()
		replacement.MergeRight(right)
		stream = r.remove(worst.stream, stream, index+1)
	}

	stream[index] = replacement
	r.streams[worst.stream] = stream
	r.total += replacement.Cycles()
	r.insert(rankEntry{
		stream: worst.stream,
		index:  index,
		cycles: replacement.Cycles(),
		ratio:  ratioOf(replacement),
	})
}

// remove deletes an instruction from a stream and its entry from the ranking,
// shifting the indices of everything after it.
func (r *reducer) remove(streamIndex int, stream []instr.Instruction, index int) []instr.Instruction {
	kept := r.ranking[:0]
	for _, entry := range r.ranking {
		if entry.stream == streamIndex {
			if entry.index == index {
				continue
			}
			if entry.index > index {
				entry.index--
			}
		}
		kept = append(kept, entry)
	}
	r.ranking = kept
	return append(stream[:index], stream[index+1:]...)
}

// insert puts an entry after every entry with a ratio no worse than its own.
func (r *reducer) insert(entry rankEntry) {
	position := sort.Search(len(r.ranking), func(i int) bool {
		return r.ranking[i].ratio > entry.ratio
	})
	r.ranking = append(r.ranking, rankEntry{})
	copy(r.ranking[position+1:], r.ranking[position:])
	r.ranking[position] = entry
}
