package driven

import (
	"context"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

// Chunker splits a cleaned document into bounded-size chunks.
// Windows are sequential with a configured overlap and never cross
// document boundaries; ordering within a document is preserved.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits one cleaned document. Empty content yields no chunks.
	Chunk(ctx context.Context, doc domain.CleanedDocument) ([]domain.Chunk, error)
}
