// Package driving provides interfaces for the application's entry points
// (primary/inbound ports) used by the CLI and MCP adapters.
package driving

import (
	"context"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

// RunOptions configures one pipeline run.
type RunOptions struct {
	// RenderJavaScript selects the rendered fetch strategy.
	RenderJavaScript bool

	// ChunkSize is the chunk window size in runes.
	ChunkSize int

	// ChunkOverlap is the number of runes shared between consecutive
	// windows of the same document. Must satisfy 0 <= overlap < size.
	ChunkOverlap int

	// K is the number of results to return for the query.
	K int
}

// RunReport is the final output of a pipeline run.
type RunReport struct {
	// State is the terminal state (done or failed).
	State domain.PipelineState

	// Reason is a human-readable explanation when State is failed.
	Reason string

	// Result holds the query output when the run completed.
	Result domain.QueryResult

	// Diagnostics summarises per-source and per-chunk failures.
	Diagnostics domain.Diagnostics
}

// Pipeline drives fetch, clean, index and query in sequence for a batch of
// sources. Each run is a fresh, independent execution; there is no
// resumption from a partial state.
type Pipeline interface {
	// Run executes the full pipeline and returns the report.
	// The returned error is non-nil only for failed terminal states.
	Run(ctx context.Context, sources []domain.Source, query string, opts RunOptions) (*RunReport, error)
}

// Indexer builds a persistent index from a batch of sources without
// running a query. Used by the index subcommand.
type Indexer interface {
	// Index fetches, cleans, chunks, embeds and stores the sources.
	// The report's Result is empty; only diagnostics are populated.
	Index(ctx context.Context, sources []domain.Source, opts RunOptions) (*RunReport, error)
}

// QueryService answers queries against a previously built index.
type QueryService interface {
	// Query embeds the text once and returns the top-K most similar chunks.
	Query(ctx context.Context, text string, k int) (domain.QueryResult, error)
}

// DocumentService exposes the cleaned documents stored alongside an index.
type DocumentService interface {
	// ListDocuments returns all stored documents in insertion order.
	ListDocuments(ctx context.Context) ([]domain.CleanedDocument, error)

	// GetDocument retrieves one document by its source ID.
	GetDocument(ctx context.Context, sourceID string) (*domain.CleanedDocument, error)
}
