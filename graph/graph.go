// Package graph picks the smallest encoding of a byte stream by treating
// instruction selection as a shortest path problem.
//
// The graph has one row per byte. Each node in a row is an instruction that
// could produce that byte: either one carried over from the previous row
// because its run isn't finished, or a fresh candidate offered by a family at
// this position. Edges only join adjacent rows, and an edge costs the encoded
// bytes needed to produce the destination byte given where we came from:
// continuing the same run is cheap, switching to another one pays the entry
// cost. Costs are additive and the graph is acyclic, so the cheapest path
// through it is the smallest encoding these families can express.

package graph

import "github.com/Crazy-Fox-2/TI-Calc-Video-Generator/instr"

// LiveRunLimit bounds how many runs of a single family are carried into the
// next row. Only the first LiveRunLimit-1 survive. It's rarely reached, and
// bounds the width of a row on long uniform stretches where every
// back-reference offset matches.
const LiveRunLimit = 50

const (
	noCost        = -1
	noPredecessor = -1
)

type node struct {
	cost int
	// from is the column of the predecessor in the previous row.
	from int
	// prev is the column of this same run in the previous row, or
	// noPredecessor if the run starts here.
	prev      int
	relPos    int
	family    int
	id        int
	remaining int

	stepCost         int
	entryCost        int
	continuationCost int
}

type solver struct {
	data     []byte
	families []instr.Family
	rows     [][]node
}

// Compile returns the smallest sequence of instructions reproducing `data`. When
// several sequences are equally small, the one built from the earliest family
// and candidate wins, so the output is deterministic. An empty stream compiles
// to an empty sequence.
func Compile(data []byte, families []instr.Family) []instr.Instruction {
	if len(data) == 0 {
		return []instr.Instruction{}
	}
	s := newSolver(data, families)
	s.build()
	return s.backtrack()
}

// MinimumCost returns the encoded size, in bytes, of what Compile would return
// for `data`, not counting the terminator.
func MinimumCost(data []byte, families []instr.Family) int {
	if len(data) == 0 {
		return 0
	}
	s := newSolver(data, families)
	s.build()
	_, cost := s.cheapestFinalNode()
	return cost
}

func newSolver(data []byte, families []instr.Family) *solver {
	for _, family := range families {
		if preparer, ok := family.(instr.Preparer); ok {
			preparer.Prepare(data)
		}
	}
	return &solver{
		data:     data,
		families: families,
		rows:     make([][]node, 0, len(data)),
	}
}

func (s *solver) build() {
	for pos := range s.data {
		row := s.newRow(pos)
		s.priceRow(pos, row)
		s.relax(pos, row)
		s.rows = append(s.rows, row)
	}
}

// newRow carries over unfinished runs from the previous row, then adds every
// fresh candidate whose family and ID aren't already in the previous row.
func (s *solver) newRow(pos int) []node {
	row := []node{}
	var previousRow []node
	if pos > 0 {
		previousRow = s.rows[pos-1]
	}

	liveRuns := make([]int, len(s.families))
	for column, previous := range previousRow {
		if previous.remaining <= 1 {
			continue
		}
		liveRuns[previous.family]++
		if liveRuns[previous.family] >= LiveRunLimit {
			continue
		}
		row = append(row, node{
			cost:      noCost,
			from:      noPredecessor,
			prev:      column,
			relPos:    previous.relPos + 1,
			family:    previous.family,
			id:        previous.id,
			remaining: previous.remaining - 1,
		})
	}

	for familyIndex, family := range s.families {
	candidates:
		for _, candidate := range family.Candidates(s.data, pos) {
			for _, previous := range previousRow {
				if previous.family == familyIndex && previous.id == candidate.ID {
					continue candidates
				}
			}
			row = append(row, node{
				cost:      noCost,
				from:      noPredecessor,
				prev:      noPredecessor,
				family:    familyIndex,
				id:        candidate.ID,
				remaining: candidate.Length,
			})
		}
	}
	return row
}

func (s *solver) priceRow(pos int, row []node) {
	for i := range row {
		n := &row[i]
		family := s.families[n.family]
		n.stepCost = family.StepCost(s.data, pos, n.id)
		n.entryCost = family.EntryCost(s.data, pos, n.id)
		n.continuationCost = family.ContinuationCost(s.data, pos, n.id, n.relPos)
	}
}

// relax finds the cheapest way into every node of `row`. Only a strictly cheaper
// path replaces the current one, so earlier predecessors win ties.
func (s *solver) relax(pos int, row []node) {
	if pos == 0 {
		for i := range row {
			row[i].cost = row[i].entryCost + row[i].stepCost
			row[i].relPos = 0
		}
		return
	}

	previousRow := s.rows[pos-1]
	for fromColumn := range previousRow {
		from := &previousRow[fromColumn]
		for toColumn := range row {
			to := &row[toColumn]
			continues := fromColumn == to.prev

			cost := from.cost + to.stepCost
			if continues {
				cost += to.continuationCost
			} else {
				cost += to.entryCost
			}

			if to.cost == noCost || cost < to.cost {
				to.cost = cost
				to.from = fromColumn
				if continues {
					to.relPos = from.relPos + 1
				} else {
					to.relPos = 0
				}
			}
		}
	}
}

func (s *solver) cheapestFinalNode() (int, int) {
	lastRow := s.rows[len(s.rows)-1]
	bestColumn := 0
	for column := range lastRow {
		if lastRow[column].cost < lastRow[bestColumn].cost {
			bestColumn = column
		}
	}
	return bestColumn, lastRow[bestColumn].cost
}

// backtrack follows predecessors from the cheapest node in the last row. A run
// ends (reading backwards, begins) wherever a node wasn't reached from its own
// earlier self.
func (s *solver) backtrack() []instr.Instruction {
	reversed := []instr.Instruction{}
	column, _ := s.cheapestFinalNode()
	length := 1

	for pos := len(s.rows) - 1; pos >= 0; pos-- {
		current := s.rows[pos][column]
		if pos == 0 || current.from != current.prev {
			family := s.families[current.family]
			reversed = append(reversed, family.Build(s.data, pos, current.id, length))
			length = 0
		}
		column = current.from
		length++
	}

	sequence := make([]instr.Instruction, len(reversed))
	for i, instruction := range reversed {
		sequence[len(reversed)-1-i] = instruction
	}
	return sequence
}
