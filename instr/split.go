package instr

// splitLengths breaks a run of `total` bytes into the fewest chunks of at most
// `maxSplit` bytes, keeping them as even as possible. The first chunks get the
// extra byte. For total >= 2 no chunk is ever a single byte unless maxSplit is 1.
func splitLengths(total, maxSplit int) []int {
	if total <= 0 {
		return nil
	}
	numChunks := (total + maxSplit - 1) / maxSplit
	base := total / numChunks
	extra := total % numChunks

	chunks := make([]int, numChunks)
	for i := range chunks {
		chunks[i] = base
		if i < extra {
			chunks[i]++
		}
	}
	return chunks
}

// fixedLengths breaks a run into full chunks of `maxSplit` bytes followed by
// whatever is left over.
func fixedLengths(total, maxSplit int) []int {
	chunks := []int{}
	for total > 0 {
		size := maxSplit
		if total < size {
			size = total
		}
		chunks = append(chunks, size)
		total -= size
	}
	return chunks
}

func chunkCount(total, maxSplit int) int {
	return (total + maxSplit - 1) / maxSplit
}
