package instr

import "sort"

// DefaultFamilies returns a fresh set of every family in the order the player
// expects ties to be broken: literal, back-reference, flip, white, black.
//
// Families may hold per-stream tables, so each concurrent compilation needs its
// own set.
func DefaultFamilies() []Family {
	return []Family{
		LiteralFamily{},
		NewBackReferenceFamily(),
		AlternatingFamily{Kind: Flip},
		AlternatingFamily{Kind: White},
		AlternatingFamily{Kind: Black},
	}
}

// unusableCost prices an entry that must never be chosen.
const unusableCost = 9999

////////////////////////////////////////////////////////////////////////////////
// Literal

type LiteralFamily struct{}

func (LiteralFamily) Name() string {
	return "literal"
}

// Candidates always offers the rest of the stream. The compiler keeps it alive
// from the first byte on, so it's only ever offered once.
func (LiteralFamily) Candidates(data []byte, pos int) []Candidate {
	return []Candidate{{Length: len(data) - pos, ID: 0}}
}

func (LiteralFamily) StepCost(data []byte, pos int, id int) int {
	return 1
}

func (LiteralFamily) EntryCost(data []byte, pos int, id int) int {
	return 1
}

func (f LiteralFamily) ContinuationCost(data []byte, pos int, id int, relPos int) int {
	if relPos%LiteralMaxSplit == 0 {
		return f.EntryCost(data, pos, id)
	}
	return 0
}

func (LiteralFamily) Build(data []byte, pos int, id int, length int) Instruction {
	return NewLiteral(data[pos : pos+length])
}

////////////////////////////////////////////////////////////////////////////////
// Back-reference

// MaxBackReferenceCandidates bounds the number of offsets offered at a single
// position, which bounds the width of the graph.
const MaxBackReferenceCandidates = 8

// BackReferenceFamily offers every earlier match of at least two bytes. The ID
// of a candidate is its offset.
type BackReferenceFamily struct {
	// matchLengths[offset][pos] is the length of the match between the bytes
	// starting at pos and those starting at pos-offset.
	matchLengths [][]uint16
	prepared     []byte
}

func NewBackReferenceFamily() *BackReferenceFamily {
	return &BackReferenceFamily{}
}

func (*BackReferenceFamily) Name() string {
	return "back-reference"
}

// Prepare builds the match table for `data`, in O(n^2) time and space.
func (f *BackReferenceFamily) Prepare(data []byte) {
	maxOffset := len(data) - 1
	if maxOffset > MaxOffset {
		maxOffset = MaxOffset
	}

	table := make([][]uint16, maxOffset+1)
	for offset := 1; offset <= maxOffset; offset++ {
		lengths := make([]uint16, len(data)+1)
		for pos := len(data) - 1; pos >= offset; pos-- {
			if data[pos] == data[pos-offset] {
				lengths[pos] = lengths[pos+1] + 1
			}
		}
		table[offset] = lengths
	}
	f.matchLengths = table
	f.prepared = data
}

func (f *BackReferenceFamily) isPrepared(data []byte) bool {
	if len(f.prepared) != len(data) {
		return false
	}
	return len(data) == 0 || &f.prepared[0] == &data[0]
}

func (f *BackReferenceFamily) matchLength(data []byte, pos, offset int) int {
	if offset < len(f.matchLengths) {
		return int(f.matchLengths[offset][pos])
	}
	return 0
}

// Candidates scans every earlier start position, oldest first. If there are
// more than [MaxBackReferenceCandidates] matches, the longest ones are kept,
// with ties going to the one found first. The survivors are returned in scan
// order.
func (f *BackReferenceFamily) Candidates(data []byte, pos int) []Candidate {
	if !f.isPrepared(data) {
		f.Prepare(data)
	}

	found := []Candidate{}
	for fromStart := 0; fromStart < pos; fromStart++ {
		offset := pos - fromStart
		if offset > MaxOffset {
			continue
		}
		length := f.matchLength(data, pos, offset)
		if length >= 2 {
			found = append(found, Candidate{Length: length, ID: offset})
		}
	}

	if len(found) <= MaxBackReferenceCandidates {
		return found
	}

	// Offsets decrease in scan order, so sorting by offset descending restores it.
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Length > found[j].Length
	})
	found = found[:MaxBackReferenceCandidates]
	sort.Slice(found, func(i, j int) bool {
		return found[i].ID > found[j].ID
	})
	return found
}

func (*BackReferenceFamily) StepCost(data []byte, pos int, offset int) int {
	return 0
}

func (*BackReferenceFamily) EntryCost(data []byte, pos int, offset int) int {
	if offset >= shortOffsetLimit {
		return 3
	}
	return 2
}

func (f *BackReferenceFamily) ContinuationCost(data []byte, pos int, offset int, relPos int) int {
	if relPos%BackReferenceMaxSplit == 0 {
		return f.EntryCost(data, pos, offset)
	}
	return 0
}

func (*BackReferenceFamily) Build(data []byte, pos int, offset int, length int) Instruction {
	return NewBackReference(offset, data[pos:pos+length])
}

////////////////////////////////////////////////////////////////////////////////
// Alternating

// AlternatingFamily offers runs of at least [MinAlternatingRun] bytes where
// every other byte is implied. The ID of a candidate is the parity (0 or 1) of
// the absolute positions holding stored bytes.
type AlternatingFamily struct {
	Kind AlternatingKind
}

// MinAlternatingRun is the shortest run an alternating family offers.
const MinAlternatingRun = 3

func (f AlternatingFamily) Name() string {
	return f.Kind.String()
}

// searchRun returns how far the pattern extends from `pos`. Bytes alternate
// between stored and implied, starting with an implied one if `startOnFill` is
// set. A stored byte always matches.
func (f AlternatingFamily) searchRun(data []byte, pos int, startOnFill bool) int {
	isFill := startOnFill
	length := 0
	var expected byte
	if f.Kind == Black {
		expected = 0xFF
	}

	for ; pos < len(data); pos++ {
		current := data[pos]
		if isFill && current != expected {
			break
		}
		if f.Kind == Flip {
			expected = ^current
		}
		length++
		isFill = !isFill
	}
	return length
}

// Candidates offers a run starting on a stored byte and, for white and black
// runs, one starting on a fill byte. Flip runs can't start on a fill byte since
// there's no previous byte to complement.
func (f AlternatingFamily) Candidates(data []byte, pos int) []Candidate {
	candidates := []Candidate{}
	if length := f.searchRun(data, pos, false); length >= MinAlternatingRun {
		candidates = append(candidates, Candidate{Length: length, ID: pos % 2})
	}
	if f.Kind == Flip {
		return candidates
	}
	if length := f.searchRun(data, pos, true); length >= MinAlternatingRun {
		candidates = append(candidates, Candidate{Length: length, ID: (pos + 1) % 2})
	}
	return candidates
}

func (AlternatingFamily) StepCost(data []byte, pos int, id int) int {
	if pos%2 == id {
		return 1
	}
	return 0
}

func (f AlternatingFamily) EntryCost(data []byte, pos int, id int) int {
	if f.Kind == Flip && pos%2 != id {
		return unusableCost
	}
	return 1
}

func (AlternatingFamily) ContinuationCost(data []byte, pos int, id int, relPos int) int {
	if relPos%AlternatingMaxSplit == 0 {
		return 1
	}
	return 0
}

func (f AlternatingFamily) Build(data []byte, pos int, id int, length int) Instruction {
	return NewAlternating(f.Kind, pos%2 == id, data[pos:pos+length])
}
