package layout_test

import (
	"math/rand"
	"testing"

	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/layout"
	"github.com/stretchr/testify/assert"
)

func TestFindFit__BacksOff(t *testing.T) {
	fit := layout.FindFit([]int{5, 3, 4}, 8)
	assert.Equal(t, []int{0, 1}, fit.Indices)
	assert.Equal(t, 8, fit.Total)
	assert.True(t, fit.Selected(0))
	assert.True(t, fit.Selected(1))
	assert.False(t, fit.Selected(2))
}

func TestFindFit__KeepsBestSeen(t *testing.T) {
	// The scan ends holding only the last component, but the best total was
	// reached earlier.
	fit := layout.FindFit([]int{4, 5, 9}, 10)
	assert.Equal(t, []int{0, 1}, fit.Indices)
	assert.Equal(t, 9, fit.Total)
}

func TestFindFit__SkipsOversize(t *testing.T) {
	fit := layout.FindFit([]int{20, 3, 4}, 10)
	assert.Equal(t, []int{1, 2}, fit.Indices)
	assert.Equal(t, 7, fit.Total)
	assert.False(t, fit.Selected(0))
}

func TestFindFit__Empty(t *testing.T) {
	fit := layout.FindFit(nil, 100)
	assert.Empty(t, fit.Indices)
	assert.Equal(t, 0, fit.Total)

	fit = layout.FindFit([]int{101, 200}, 100)
	assert.Empty(t, fit.Indices)
	assert.Equal(t, 0, fit.Total)
}

func TestFindFit__Contract(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		sizes := make([]int, rng.Intn(40))
		for i := range sizes {
			sizes[i] = 1 + rng.Intn(3000)
		}
		target := 1 + rng.Intn(16000)

		fit := layout.FindFit(sizes, target)
		assert.LessOrEqual(t, fit.Total, target, "trial %d", trial)

		sum := 0
		largest := 0
		for i, size := range sizes {
			if fit.Selected(i) {
				sum += size
			}
			if size <= target && size > largest {
				largest = size
			}
		}
		assert.Equal(t, fit.Total, sum, "trial %d: mask doesn't match the total", trial)
		assert.GreaterOrEqual(t, fit.Total, largest, "trial %d", trial)

		for i := 1; i < len(fit.Indices); i++ {
			assert.Less(t, fit.Indices[i-1], fit.Indices[i], "trial %d: indices out of order", trial)
		}
	}
}
