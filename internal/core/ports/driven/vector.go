package driven

import "context"

// VectorIndex provides nearest-neighbour search over chunk vectors.
// Backed by an HNSW graph. The index is append-only within a run and is
// owned by a single writer; it supports repeated queries without
// re-embedding stored chunks.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID. All vectors in one
	// index share the same dimensionality; mismatches are rejected.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	// Results are ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count() int

	// Save persists the index to the given path (atomic write).
	Save(path string) error

	// Load replaces the index contents from the given path. A reloaded
	// index yields identical search results to the one that produced it.
	Load(path string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
