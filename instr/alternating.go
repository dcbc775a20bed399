package instr

// AlternatingKind selects what fills the bytes an alternating run doesn't store.
type AlternatingKind int

const (
	// Flip runs fill every other byte with the complement of the byte before it.
	Flip AlternatingKind = iota
	// White runs fill every other byte with 0x00.
	White
	// Black runs fill every other byte with 0xFF.
	Black
)

func (k AlternatingKind) String() string {
	switch k {
	case Flip:
		return "flip"
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// fill returns the implicit byte that follows `previous`.
func (k AlternatingKind) fill(previous byte) byte {
	switch k {
	case White:
		return 0x00
	case Black:
		return 0xFF
	default:
		return ^previous
	}
}

const (
	flipOpcode  = 0x04
	whiteOpcode = 0x01
	blackOpcode = 0x03
	// Set in white and black headers when the chunk starts on a fill byte.
	startsOnFillBit = 0x04
)

// Alternating stores only every other byte of a run. The header is
// `((n-1)<<3) | opcode`; white and black headers also carry a bit telling
// whether the chunk begins on a stored byte or on a fill byte. Flip chunks
// always begin on a stored byte and are split into fixed 32-byte pieces so that
// every chunk starts on the same parity.
type Alternating struct {
	kind           AlternatingKind
	startsOnStored bool
	data           []byte
}

// NewAlternating creates an alternating run reproducing `data`. The caller must
// guarantee `data` follows the pattern.
func NewAlternating(kind AlternatingKind, startsOnStored bool, data []byte) *Alternating {
	payload := make([]byte, len(data))
	copy(payload, data)
	return &Alternating{kind: kind, startsOnStored: startsOnStored, data: payload}
}

func (a *Alternating) Kind() AlternatingKind {
	return a.kind
}

func (a *Alternating) isStored(relPos int) bool {
	return (relPos%2 == 0) == a.startsOnStored
}

func (a *Alternating) chunks() []int {
	if a.kind == Flip {
		return fixedLengths(len(a.data), AlternatingMaxSplit)
	}
	return splitLengths(len(a.data), AlternatingMaxSplit)
}

func (a *Alternating) storedCount() int {
	count := 0
	for i := range a.data {
		if a.isStored(i) {
			count++
		}
	}
	return count
}

func (a *Alternating) Emit(isLast bool) []byte {
	output := make([]byte, 0, a.CompressedSize()+1)
	offset := 0
	for _, size := range a.chunks() {
		header := byte((size - 1) << 3)
		switch a.kind {
		case Flip:
			header |= flipOpcode
		case White:
			header |= whiteOpcode
		case Black:
			header |= blackOpcode
		}
		if a.kind != Flip && !a.isStored(offset) {
			header |= startsOnFillBit
		}
		output = append(output, header)

		for i := offset; i < offset+size; i++ {
			if a.isStored(i) {
				output = append(output, a.data[i])
			}
		}
		offset += size
	}
	if isLast {
		output = append(output, Terminator)
	}
	return output
}

func (a *Alternating) CompressedSize() int {
	return len(a.chunks()) + a.storedCount()
}

func (a *Alternating) DecompressedSize() int {
	return len(a.data)
}

func (a *Alternating) Decompressed() []byte {
	output := make([]byte, len(a.data))
	copy(output, a.data)
	return output
}

func (a *Alternating) Cycles() int {
	stored := a.storedCount()
	implicit := len(a.data) - stored
	if a.kind == Flip {
		return len(a.chunks())*FlipChunkCycles + stored*FlipStoredCycles +
			implicit*FlipImplicitCycles
	}
	return len(a.chunks())*FillChunkCycles + stored*FillStoredCycles +
		implicit*FillConstantCycles
}

func (a *Alternating) IsMinimal() bool {
	return false
}

func (a *Alternating) ToMinimal() Instruction {
	return NewLiteral(a.data)
}

func (a *Alternating) MergeLeft(other Instruction)  {}
func (a *Alternating) MergeRight(other Instruction) {}
