// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// Processor splits cleaned document text into fixed-size chunks.
// Windows are measured in runes so multi-byte text never splits mid-rune,
// and never cross document boundaries.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay strictly below the chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits the document content into sequential windows.
// Every chunk except a document's final one has exactly chunkSize runes;
// the final chunk holds whatever remains. Empty content yields no chunks.
func (p *Processor) Chunk(_ context.Context, doc domain.CleanedDocument) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	step := p.chunkSize - p.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)

	position := 0
	for start := 0; start < total; start += step {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			SourceID: doc.SourceID,
			Content:  string(runes[start:end]),
			Position: position,
			Offset:   start,
		})
		position++

		if end == total {
			break
		}
	}

	return chunks, nil
}
