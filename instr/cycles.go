package instr

// Cycle cost model for the player's decode loop: a fixed cost per header
// (dispatch, setup and loop exit) plus a cost per byte produced. The literal and
// back-reference figures are counted from their handlers. They are constants,
// not derived, so a timing change in the player only needs to be mirrored here.
const (
	LiteralChunkCycles = 54 // 40 dispatch + 7 setup - 5 loop exit + 12 return
	LiteralByteCycles  = 21

	BackReferenceShortChunkCycles = 155 // 40 + 44 + 20 (1-byte offset) + 34 - 5 + 22
	BackReferenceLongChunkCycles  = 167 // 32 cycles to fetch a 2-byte offset
	BackReferenceByteCycles       = 21

	// The alternating handlers have not been timed; these figures are estimates
	// from handlers of similar shape.
	FlipChunkCycles    = 61
	FlipStoredCycles   = 29
	FlipImplicitCycles = 18

	FillChunkCycles    = 63
	FillStoredCycles   = 29
	FillConstantCycles = 15
)

// Maximum number of bytes a single header can cover, per family.
const (
	LiteralMaxSplit       = 64
	BackReferenceMaxSplit = 32
	AlternatingMaxSplit   = 32
)

// MaxOffset is the largest back-reference offset the two-byte form can hold.
const MaxOffset = 0x7FFF

// shortOffsetLimit is the first offset that needs the two-byte form.
const shortOffsetLimit = 128
