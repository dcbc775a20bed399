package instr

// Literal stores bytes verbatim. Each chunk is a header byte `((n-1)<<2) | 0x02`
// followed by the n bytes.
type Literal struct {
	data []byte
}

const literalOpcode = 0x02

// NewLiteral creates a literal run holding a copy of `data`.
func NewLiteral(data []byte) *Literal {
	payload := make([]byte, len(data))
	copy(payload, data)
	return &Literal{data: payload}
}

func (l *Literal) Emit(isLast bool) []byte {
	output := make([]byte, 0, l.CompressedSize()+1)
	offset := 0
	for _, size := range splitLengths(len(l.data), LiteralMaxSplit) {
		output = append(output, byte((size-1)<<2)|literalOpcode)
		output = append(output, l.data[offset:offset+size]...)
		offset += size
	}
	if isLast {
		output = append(output, Terminator)
	}
	return output
}

func (l *Literal) CompressedSize() int {
	return len(l.data) + chunkCount(len(l.data), LiteralMaxSplit)
}

func (l *Literal) DecompressedSize() int {
	return len(l.data)
}

func (l *Literal) Decompressed() []byte {
	output := make([]byte, len(l.data))
	copy(output, l.data)
	return output
}

func (l *Literal) Cycles() int {
	return chunkCount(len(l.data), LiteralMaxSplit)*LiteralChunkCycles +
		len(l.data)*LiteralByteCycles
}

func (l *Literal) IsMinimal() bool {
	return true
}

func (l *Literal) ToMinimal() Instruction {
	return NewLiteral(l.data)
}

func (l *Literal) MergeLeft(other Instruction) {
	l.data = append(other.Decompressed(), l.data...)
}

func (l *Literal) MergeRight(other Instruction) {
	l.data = append(l.data, other.Decompressed()...)
}
