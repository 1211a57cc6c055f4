// Package scan partitions a repository's history into contiguous chunks
// and drives the parallel snapshot scan that fills the stats archive.
package scan

import (
	"github.com/Sumatoshi-tech/linestat/internal/gitlib"
)

// Chunk is one contiguous, ordered slice of the history. Chunk 0 holds
// the oldest commits. The first commit of every chunk is reconstructed
// from a full-tree diff, so chunks are independent units of work.
type Chunk struct {
	Index  int
	Hashes []gitlib.Hash
}

// Plan splits hashes into chunks. targetChunks is a soft target: the
// chunk size is raised to minChunkSize when the target would produce
// chunks too small to amortize their full-tree first diff. Small
// histories come back as a single chunk.
func Plan(hashes []gitlib.Hash, targetChunks, minChunkSize int) []Chunk {
	if len(hashes) == 0 {
		return nil
	}

	if targetChunks < 1 {
		targetChunks = 1
	}

	if minChunkSize < 1 {
		minChunkSize = 1
	}

	size := (len(hashes) + targetChunks - 1) / targetChunks
	if size < minChunkSize {
		size = minChunkSize
	}

	chunks := make([]Chunk, 0, (len(hashes)+size-1)/size)

	for start := 0; start < len(hashes); start += size {
		end := start + size
		if end > len(hashes) {
			end = len(hashes)
		}

		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Hashes: hashes[start:end],
		})
	}

	return chunks
}
