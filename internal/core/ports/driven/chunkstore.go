package driven

import (
	"context"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

// ChunkStore persists chunk payloads alongside the vector index so query
// hits can be hydrated back into full chunks.
type ChunkStore interface {
	// SaveDocument stores a cleaned document.
	SaveDocument(ctx context.Context, doc domain.CleanedDocument) error

	// GetDocument retrieves a cleaned document by its source ID.
	GetDocument(ctx context.Context, sourceID string) (*domain.CleanedDocument, error)

	// ListDocuments returns all stored documents in insertion order.
	ListDocuments(ctx context.Context) ([]domain.CleanedDocument, error)

	// SaveChunks stores chunks in one transaction.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns all chunks in insertion order (earlier source,
	// earlier position first). Used for deterministic tie-breaking.
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
