package instr_test

import (
	"bytes"
	"math/rand"
	"testing"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralEmit(t *testing.T) {
	literal := instr.NewLiteral([]byte{0x10, 0x20, 0x30})

	assert.Equal(t, []byte{0x0A, 0x10, 0x20, 0x30}, literal.Emit(false))
	assert.Equal(t, []byte{0x0A, 0x10, 0x20, 0x30, 0x00}, literal.Emit(true))
	assert.Equal(t, 4, literal.CompressedSize())
	assert.Equal(t, 3, literal.DecompressedSize())
	assert.Equal(t, instr.LiteralChunkCycles+3*instr.LiteralByteCycles, literal.Cycles())
	assert.True(t, literal.IsMinimal())
}

func TestLiteralEmit__SplitsEvenly(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, 100)
	literal := instr.NewLiteral(data)

	bytecode := literal.Emit(false)
	require.Len(t, bytecode, 102)
	assert.EqualValues(t, (49<<2)|0x02, bytecode[0])
	assert.EqualValues(t, (49<<2)|0x02, bytecode[51])
	assert.Equal(t, 2*instr.LiteralChunkCycles+100*instr.LiteralByteCycles, literal.Cycles())
}

func TestLiteralMerge(t *testing.T) {
	middle := instr.NewLiteral([]byte{3, 4})
	middle.MergeLeft(instr.NewBackReference(1, []byte{1, 2}))
	middle.MergeRight(instr.NewLiteral([]byte{5}))

	assert.Equal(t, []byte{1, 2, 3, 4, 5}, middle.Decompressed())
	assert.Equal(t, 6, middle.CompressedSize())
}

func TestLiteralCopiesInput(t *testing.T) {
	data := []byte{1, 2, 3}
	literal := instr.NewLiteral(data)
	data[0] = 99
	assert.Equal(t, []byte{1, 2, 3}, literal.Decompressed())
}

func TestBackReferenceEmit(t *testing.T) {
	cases := []struct {
		name     string
		offset   int
		length   int
		expected []byte
	}{
		{"short offset", 5, 4, []byte{0x18, 0x0A}},
		{"largest short offset", 127, 2, []byte{0x08, 0xFE}},
		{"long offset", 300, 2, []byte{0x08, 0x03, 0x2C}},
		{"two chunks", 1, 40, []byte{19 << 3, 0x02, 19 << 3, 0x02}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backRef := instr.NewBackReference(tc.offset, make([]byte, tc.length))
			assert.Equal(t, tc.expected, backRef.Emit(false))
			assert.Equal(t, len(tc.expected), backRef.CompressedSize())
			assert.False(t, backRef.IsMinimal())
		})
	}
}

func TestBackReferenceMergeIsNoOp(t *testing.T) {
	backRef := instr.NewBackReference(2, []byte{1, 2, 1})
	backRef.MergeLeft(instr.NewLiteral([]byte{9}))
	backRef.MergeRight(instr.NewLiteral([]byte{9}))
	assert.Equal(t, []byte{1, 2, 1}, backRef.Decompressed())
}

func TestAlternatingEmit(t *testing.T) {
	cases := []struct {
		name           string
		kind           instr.AlternatingKind
		startsOnStored bool
		data           []byte
		expected       []byte
	}{
		{
			"white starting on fill",
			instr.White,
			false,
			[]byte{0x00, 0x55, 0x00},
			[]byte{(2 << 3) | 0x01 | 0x04, 0x55},
		},
		{
			"white starting on stored",
			instr.White,
			true,
			[]byte{0x55, 0x00, 0x66, 0x00},
			[]byte{(3 << 3) | 0x01, 0x55, 0x66},
		},
		{
			"black starting on fill",
			instr.Black,
			false,
			[]byte{0xFF, 0x12, 0xFF, 0x34},
			[]byte{(3 << 3) | 0x03 | 0x04, 0x12, 0x34},
		},
		{
			"flip",
			instr.Flip,
			true,
			[]byte{0x0F, 0xF0, 0x33, 0xCC, 0x55},
			[]byte{(4 << 3) | 0x04, 0x0F, 0x33, 0x55},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			run := instr.NewAlternating(tc.kind, tc.startsOnStored, tc.data)
			bytecode := run.Emit(true)
			assert.Equal(t, append(tc.expected, 0x00), bytecode)
			assert.Equal(t, len(tc.expected), run.CompressedSize())

			decoded, consumed, err := instr.Decode(bytecode)
			require.NoError(t, err)
			assert.Equal(t, len(bytecode), consumed)
			assert.Equal(t, tc.data, decoded)
		})
	}
}

func TestFlipChunksStayOnStoredParity(t *testing.T) {
	data := make([]byte, 70)
	for i := range data {
		if i%2 == 0 {
			data[i] = byte(i)
		} else {
			data[i] = ^data[i-1]
		}
	}

	run := instr.NewAlternating(instr.Flip, true, data)
	bytecode := run.Emit(true)
	// 32 + 32 + 6 bytes, each chunk storing half its bytes.
	assert.Equal(t, 3+35, run.CompressedSize())
	assert.EqualValues(t, (31<<3)|0x04, bytecode[0])
	assert.EqualValues(t, (31<<3)|0x04, bytecode[17])
	assert.EqualValues(t, (5<<3)|0x04, bytecode[34])

	decoded, _, err := instr.Decode(bytecode)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestToMinimalNeverCostsMoreCycles(t *testing.T) {
	instructions := []instr.Instruction{
		instr.NewBackReference(3, bytes.Repeat([]byte{1}, 2)),
		instr.NewBackReference(200, bytes.Repeat([]byte{1}, 100)),
		instr.NewAlternating(instr.White, false, []byte{0, 1, 0}),
		instr.NewAlternating(instr.White, false, []byte{0, 1, 0, 1, 0}),
		instr.NewAlternating(instr.Black, true, []byte{1, 0xFF, 1, 0xFF, 1, 0xFF, 1}),
		instr.NewAlternating(instr.Flip, true, []byte{1, 0xFE, 1}),
		instr.NewAlternating(instr.Flip, true, make([]byte, 65)),
	}

	for _, instruction := range instructions {
		minimal := instruction.ToMinimal()
		assert.True(t, minimal.IsMinimal())
		assert.LessOrEqual(t, minimal.Cycles(), instruction.Cycles())
		assert.Equal(t, instruction.Decompressed(), minimal.Decompressed())
	}
}

func TestBytecode__EmptySequence(t *testing.T) {
	assert.Equal(t, []byte{0x00}, instr.Bytecode(nil))
}

func TestBytecode__TerminatesOnce(t *testing.T) {
	sequence := []instr.Instruction{
		instr.NewLiteral([]byte{7, 8}),
		instr.NewBackReference(2, []byte{7, 8}),
	}
	assert.Equal(t, []byte{0x06, 7, 8, 0x08, 0x04, 0x00}, instr.Bytecode(sequence))
	assert.Equal(t, []byte{0x06, 7, 8, 0x08, 0x04}, instr.Stream(sequence))
	assert.Equal(t, 5, instr.TotalCompressed(sequence))
	assert.Equal(t, []byte{7, 8, 7, 8}, instr.Decompress(sequence))
}

func TestDecode__Errors(t *testing.T) {
	cases := []struct {
		name     string
		bytecode []byte
	}{
		{"empty", []byte{}},
		{"no terminator", []byte{0x06, 1, 2}},
		{"truncated literal", []byte{0x0A, 1}},
		{"offset before start", []byte{0x06, 1, 2, 0x08, 0x06, 0x00}},
		{"missing offset", []byte{0x06, 1, 2, 0x08}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := instr.Decode(tc.bytecode)
			assert.ErrorIs(t, err, vidgen.ErrMalformedInput)
		})
	}
}

func TestBackReferenceCandidates__SharedSubstrings(t *testing.T) {
	data := []byte{0, 1, 2, 3, 1, 2, 4, 2, 4, 2, 1, 7, 0}
	family := instr.NewBackReferenceFamily()

	expected := map[int][]instr.Candidate{
		4: {{Length: 2, ID: 3}},
		7: {{Length: 3, ID: 2}},
		8: {{Length: 2, ID: 2}},
	}
	for pos := range data {
		assert.Equal(t, expected[pos], nilIfEmpty(family.Candidates(data, pos)), "position %d", pos)
	}
}

func TestBackReferenceCandidates__Capped(t *testing.T) {
	data := bytes.Repeat([]byte{0xAA}, 20)
	family := instr.NewBackReferenceFamily()

	candidates := family.Candidates(data, 10)
	require.Len(t, candidates, instr.MaxBackReferenceCandidates)
	for i, candidate := range candidates {
		assert.Equal(t, 10-i, candidate.ID, "candidate %d out of scan order", i)
		assert.Equal(t, 10, candidate.Length)
	}
}

func TestBackReferenceCandidates__KeepsLongest(t *testing.T) {
	// Ten short matches of "AB" followed by one long match.
	data := []byte("ABCDEFGHAB-AB-AB-AB-AB-AB-AB-AB-AB-ABCDEFGH")
	family := instr.NewBackReferenceFamily()
	pos := len(data) - 8

	candidates := family.Candidates(data, pos)
	require.Len(t, candidates, instr.MaxBackReferenceCandidates)
	assert.Equal(t, instr.Candidate{Length: 8, ID: pos}, candidates[0])
}

func TestAlternatingCandidates(t *testing.T) {
	white := instr.AlternatingFamily{Kind: instr.White}
	assert.Equal(
		t,
		[]instr.Candidate{{Length: 6, ID: 1}},
		white.Candidates([]byte{0x00, 0x12, 0x00, 0x34, 0x00, 0xFF}, 0),
	)
	assert.Empty(t, white.Candidates([]byte{0x00, 0x12, 0x01}, 0))

	flip := instr.AlternatingFamily{Kind: instr.Flip}
	assert.Equal(
		t,
		[]instr.Candidate{{Length: 5, ID: 1}},
		flip.Candidates([]byte{0x99, 0x0F, 0xF0, 0x33, 0xCC, 0x55}, 1),
	)

	black := instr.AlternatingFamily{Kind: instr.Black}
	assert.Equal(
		t,
		[]instr.Candidate{{Length: 3, ID: 0}, {Length: 4, ID: 1}},
		black.Candidates([]byte{0xFF, 0xFF, 0xFF, 0x00}, 0),
	)
}

// The cost a family charges for a run must be exactly the size of the
// instruction it builds, or the compiler optimizes the wrong thing.
func TestFamilyCostsMatchCompressedSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 300)
	for i := range data {
		switch rng.Intn(4) {
		case 0:
			data[i] = 0x00
		case 1:
			data[i] = 0xFF
		case 2:
			if i > 0 {
				data[i] = ^data[i-1]
			}
		default:
			data[i] = byte(rng.Intn(4))
		}
	}

	for _, family := range instr.DefaultFamilies() {
		for pos := 0; pos < len(data); pos++ {
			for _, candidate := range family.Candidates(data, pos) {
				cost := family.EntryCost(data, pos, candidate.ID)
				for rel := 0; rel < candidate.Length; rel++ {
					cost += family.StepCost(data, pos+rel, candidate.ID)
					if rel > 0 {
						cost += family.ContinuationCost(data, pos+rel, candidate.ID, rel)
					}
				}

				built := family.Build(data, pos, candidate.ID, candidate.Length)
				require.Equal(
					t, cost, built.CompressedSize(),
					"%s at %d, id %d, length %d", family.Name(), pos, candidate.ID, candidate.Length)
				require.Equal(t, data[pos:pos+candidate.Length], built.Decompressed())

				decoded, _, err := instr.Decode(append(prefixFor(data, pos), built.Emit(true)...))
				require.NoError(t, err)
				require.Equal(t, data[:pos+candidate.Length], decoded)
			}
		}
	}
}

// prefixFor encodes data[:pos] as literals so a back-reference or flip run has
// something to refer to.
func prefixFor(data []byte, pos int) []byte {
	if pos == 0 {
		return nil
	}
	return instr.NewLiteral(data[:pos]).Emit(false)
}

func nilIfEmpty(candidates []instr.Candidate) []instr.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	return candidates
}
