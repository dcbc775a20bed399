package layout

import "github.com/boljen/go-bitmap"

// Fit is a selection of components made by FindFit.
type Fit struct {
	// Indices are the selected components, in ascending order.
	Indices []int
	// Mask has a bit set for every selected component.
	Mask  bitmap.Bitmap
	Total int
}

// Selected returns true if component `i` was selected.
func (f Fit) Selected(i int) bool {
	return f.Mask.Get(i)
}

// FindFit selects components whose sizes add up to as much of `target` as it
// can without going over. It's a single greedy pass, not an exact solution:
// components are accepted in order, and when one would push the total over the
// target, the most recently accepted components are dropped until it fits. The
// best selection seen during the pass is returned.
//
// Components larger than `target` are never selected.
func FindFit(sizes []int, target int) Fit {
	accepted := make([]int, 0, len(sizes))
	best := []int{}
	total := 0
	bestTotal := 0

	for i, size := range sizes {
		if size > target {
			continue
		}

		total += size
		for total > target {
			last := accepted[len(accepted)-1]
			accepted = accepted[:len(accepted)-1]
			total -= sizes[last]
		}
		accepted = append(accepted, i)

		if total > bestTotal {
			bestTotal = total
			best = append(best[:0], accepted...)
		}
	}

	mask := bitmap.New(len(sizes))
	for _, i := range best {
		mask.Set(i, true)
	}
	return Fit{Indices: best, Mask: mask, Total: bestTotal}
}
