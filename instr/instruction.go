// Package instr defines the bytecode instructions the calculator-side player
// decodes, and the families that offer them to the graph compiler.
//
// Every instruction reproduces a contiguous slice of the source stream. The
// literal run is the only family that can represent arbitrary bytes and is
// therefore the "minimal" form every other instruction can be converted into.

package instr

// Terminator ends an image component's bytecode. No instruction header can be
// zero: back-references are always at least two bytes long.
const Terminator byte = 0x00

type Instruction interface {
	// Emit returns the bytecode for the instruction. If `isLast` is set, the
	// terminator is appended.
	Emit(isLast bool) []byte
	CompressedSize() int
	DecompressedSize() int
	// Decompressed returns a copy of the bytes this instruction reproduces.
	Decompressed() []byte
	// Cycles gives the number of CPU cycles the player spends executing the
	// instruction. See cycles.go for the cost model.
	Cycles() int
	IsMinimal() bool
	// ToMinimal converts the instruction into a literal run with identical
	// decompressed bytes. Cycles() of the result is never greater.
	ToMinimal() Instruction
	// MergeLeft prepends the payload of `other`, which must be the instruction
	// immediately before this one. It's a no-op for anything but literal runs.
	MergeLeft(other Instruction)
	// MergeRight appends the payload of `other`, which must be the instruction
	// immediately after this one. It's a no-op for anything but literal runs.
	MergeRight(other Instruction)
}

// Candidate is an instruction a family can start at a given position.
type Candidate struct {
	// Length is the maximum number of bytes the instruction can cover.
	Length int
	// ID distinguishes simultaneous options from the same family, e.g. the
	// offset of a back-reference or the stored parity of an alternating run.
	ID int
}

// Family supplies candidates and costs to the graph compiler. Costs are in
// encoded bytes and are split up so the compiler can tell starting a fresh
// instruction apart from continuing one already in progress.
type Family interface {
	Name() string
	Candidates(data []byte, pos int) []Candidate
	// StepCost is paid for every byte the instruction covers.
	StepCost(data []byte, pos int, id int) int
	// EntryCost is paid when an instruction starts at `pos`.
	EntryCost(data []byte, pos int, id int) int
	// ContinuationCost is paid when the byte at `pos` continues an instruction
	// begun `relPos` bytes earlier. It's zero except where the family's maximum
	// split length forces a new header.
	ContinuationCost(data []byte, pos int, id int, relPos int) int
	// Build creates the instruction covering `length` bytes starting at `pos`.
	Build(data []byte, pos int, id int, length int) Instruction
}

// Preparer is implemented by families that precompute tables for a stream
// before candidates are requested. The compiler calls Prepare once per stream.
type Preparer interface {
	Prepare(data []byte)
}

////////////////////////////////////////////////////////////////////////////////
// Sequence helpers

// Bytecode concatenates the bytecode of every instruction in the sequence and
// terminates it. An empty sequence is a lone terminator.
func Bytecode(sequence []Instruction) []byte {
	output := make([]byte, 0, TotalCompressed(sequence)+1)
	for i, instruction := range sequence {
		output = append(output, instruction.Emit(i == len(sequence)-1)...)
	}
	if len(sequence) == 0 {
		output = append(output, Terminator)
	}
	return output
}

// Stream concatenates the bytecode of every instruction without a terminator.
func Stream(sequence []Instruction) []byte {
	output := make([]byte, 0, TotalCompressed(sequence))
	for _, instruction := range sequence {
		output = append(output, instruction.Emit(false)...)
	}
	return output
}

func TotalCycles(sequence []Instruction) int {
	total := 0
	for _, instruction := range sequence {
		total += instruction.Cycles()
	}
	return total
}

func TotalCompressed(sequence []Instruction) int {
	total := 0
	for _, instruction := range sequence {
		total += instruction.CompressedSize()
	}
	return total
}

// Decompress concatenates the decompressed bytes of every instruction.
func Decompress(sequence []Instruction) []byte {
	output := []byte{}
	for _, instruction := range sequence {
		output = append(output, instruction.Decompressed()...)
	}
	return output
}
