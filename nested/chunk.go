package nested

// workChunk is a contiguous run of top-level items assigned to one worker.
type workChunk struct {
	rank  int
	items []any
}

// splitChunks divides items into exactly one contiguous chunk per worker.
// Chunk sizes differ by at most one, larger chunks first, and
// concatenating the chunks in rank order reproduces the input.
func splitChunks(items []any, workers int) []workChunk {
	div, mod := len(items)/workers, len(items)%workers

	chunks := make([]workChunk, 0, workers)
	for i := 0; i < workers; i++ {
		start := div*i + min(i, mod)
		end := start + div
		if i < mod {
			end++
		}
		chunks = append(chunks, workChunk{rank: i, items: items[start:end]})
	}
	return chunks
}

func chunkSizes(chunks []workChunk) []int {
	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c.items)
	}
	return sizes
}
