package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLengths(t *testing.T) {
	cases := []struct {
		name     string
		total    int
		maxSplit int
		expected []int
	}{
		{"empty", 0, 32, nil},
		{"single", 1, 32, []int{1}},
		{"exact", 32, 32, []int{32}},
		{"one over", 33, 32, []int{17, 16}},
		{"three chunks", 65, 32, []int{22, 22, 21}},
		{"literal", 100, 64, []int{50, 50}},
		// A naive "full chunks first" split would leave a single byte here.
		{"no single byte tail", 1473, 32, append(repeatInt(32, 16), repeatInt(31, 31)...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := splitLengths(tc.total, tc.maxSplit)
			assert.Equal(t, tc.expected, chunks)

			sum := 0
			for _, size := range chunks {
				assert.LessOrEqual(t, size, tc.maxSplit)
				sum += size
			}
			assert.Equal(t, tc.total, sum)
		})
	}
}

func TestFixedLengths(t *testing.T) {
	assert.Equal(t, []int{32, 32, 6}, fixedLengths(70, 32))
	assert.Equal(t, []int{3}, fixedLengths(3, 32))
	assert.Empty(t, fixedLengths(0, 32))
}

func repeatInt(value, count int) []int {
	output := make([]int, count)
	for i := range output {
		output[i] = value
	}
	return output
}
