package instr

// BackReference copies bytes already produced. Each chunk is a header byte
// `(n-1)<<3` followed by the offset: `offset<<1` if it's under 128, otherwise
// two bytes, `((offset & 0x7F00) >> 7) + 1` and the low byte. The low bit of the
// first offset byte tells the two forms apart.
//
// The source may overlap the destination, so an offset of 1 repeats a byte.
type BackReference struct {
	offset int
	data   []byte
}

// NewBackReference creates a back-reference reproducing `data` by copying from
// `offset` bytes back.
func NewBackReference(offset int, data []byte) *BackReference {
	payload := make([]byte, len(data))
	copy(payload, data)
	return &BackReference{offset: offset, data: payload}
}

func (b *BackReference) Offset() int {
	return b.offset
}

func (b *BackReference) isLong() bool {
	return b.offset >= shortOffsetLimit
}

func (b *BackReference) headerSize() int {
	if b.isLong() {
		return 3
	}
	return 2
}

func (b *BackReference) Emit(isLast bool) []byte {
	output := make([]byte, 0, b.CompressedSize()+1)
	for _, size := range splitLengths(len(b.data), BackReferenceMaxSplit) {
		output = append(output, byte((size-1)<<3))
		if b.isLong() {
			output = append(output, byte(((b.offset&0x7F00)>>7)+1), byte(b.offset))
		} else {
			output = append(output, byte(b.offset<<1))
		}
	}
	if isLast {
		output = append(output, Terminator)
	}
	return output
}

func (b *BackReference) CompressedSize() int {
	return chunkCount(len(b.data), BackReferenceMaxSplit) * b.headerSize()
}

func (b *BackReference) DecompressedSize() int {
	return len(b.data)
}

func (b *BackReference) Decompressed() []byte {
	output := make([]byte, len(b.data))
	copy(output, b.data)
	return output
}

func (b *BackReference) Cycles() int {
	perChunk := BackReferenceShortChunkCycles
	if b.isLong() {
		perChunk = BackReferenceLongChunkCycles
	}
	return chunkCount(len(b.data), BackReferenceMaxSplit)*perChunk +
		len(b.data)*BackReferenceByteCycles
}

func (b *BackReference) IsMinimal() bool {
	return false
}

func (b *BackReference) ToMinimal() Instruction {
	return NewLiteral(b.data)
}

func (b *BackReference) MergeLeft(other Instruction)  {}
func (b *BackReference) MergeRight(other Instruction) {}
