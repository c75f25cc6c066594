// Package services contains the core application services that drive the
// fetch, clean, index and query stages.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure PipelineService implements the interfaces.
var (
	_ driving.Pipeline = (*PipelineService)(nil)
	_ driving.Indexer  = (*PipelineService)(nil)
)

// DefaultEmbedConcurrency bounds parallel embedding calls.
const DefaultEmbedConcurrency = 4

// ChunkerFactory builds a chunker for the requested window geometry.
// Zero values select the chunker's own defaults.
type ChunkerFactory func(size, overlap int) driven.Chunker

// PipelineConfig holds the infrastructure settings for a pipeline run.
type PipelineConfig struct {
	// FetchTimeout bounds a single fetch attempt. Zero uses the
	// fetcher's default.
	FetchTimeout time.Duration

	// UserAgent is sent with remote requests.
	UserAgent string

	// FetchConcurrency bounds parallel fetches.
	FetchConcurrency int

	// EmbedConcurrency bounds parallel embedding calls.
	EmbedConcurrency int

	// IndexPath, when set, is where the vector index is persisted after
	// a successful indexing stage.
	IndexPath string
}

// PipelineService executes the staged pipeline: fetch, clean, index,
// query. Every stage is a barrier; the next stage starts only when the
// previous one has finished for the whole batch. A run either reaches
// the done state with a query result or the failed state with a reason.
type PipelineService struct {
	fetcher    driven.BatchFetcher
	normaliser driven.Normaliser
	newChunker ChunkerFactory
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	chunks     driven.ChunkStore
	cfg        PipelineConfig
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(
	fetcher driven.BatchFetcher,
	normaliser driven.Normaliser,
	newChunker ChunkerFactory,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	chunks driven.ChunkStore,
	cfg PipelineConfig,
) *PipelineService {
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = DefaultEmbedConcurrency
	}
	return &PipelineService{
		fetcher:    fetcher,
		normaliser: normaliser,
		newChunker: newChunker,
		embedder:   embedder,
		index:      index,
		chunks:     chunks,
		cfg:        cfg,
	}
}

// Run executes the full pipeline including the query stage.
func (p *PipelineService) Run(
	ctx context.Context, sources []domain.Source, query string, opts driving.RunOptions,
) (*driving.RunReport, error) {
	report, err := p.build(ctx, sources, opts)
	if err != nil {
		return report, err
	}

	logger.Section("Querying")
	report.State = domain.StateQuerying

	qs := NewQueryService(p.embedder, p.index, p.chunks)
	result, err := qs.Query(ctx, query, opts.K)
	if err != nil {
		return p.fail(report, fmt.Sprintf("query failed: %v", err)), err
	}

	report.State = domain.StateDone
	report.Result = result
	logger.Info("pipeline done: %d results", len(result.Results))
	return report, nil
}

// Index executes the pipeline up to and including the indexing stage.
func (p *PipelineService) Index(
	ctx context.Context, sources []domain.Source, opts driving.RunOptions,
) (*driving.RunReport, error) {
	report, err := p.build(ctx, sources, opts)
	if err != nil {
		return report, err
	}

	report.State = domain.StateDone
	logger.Info("indexing done: %d chunks", report.Diagnostics.ChunksIndexed)
	return report, nil
}

// build runs the fetch, clean and index stages. On success the returned
// report is in the indexing state with diagnostics populated; on failure
// it is in the failed state and the error is non-nil.
func (p *PipelineService) build(
	ctx context.Context, sources []domain.Source, opts driving.RunOptions,
) (*driving.RunReport, error) {
	report := &driving.RunReport{State: domain.StateFetching}

	if len(sources) == 0 {
		return p.fail(report, "no sources given"), domain.ErrInvalidInput
	}
	if opts.ChunkSize > 0 && opts.ChunkOverlap >= opts.ChunkSize {
		reason := fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d",
			opts.ChunkOverlap, opts.ChunkSize)
		return p.fail(report, reason), domain.ErrInvalidInput
	}

	logger.Section("Fetching")
	docs, err := p.fetcher.Fetch(ctx, sources, driven.FetchOptions{
		RenderJavaScript: opts.RenderJavaScript,
		Timeout:          p.cfg.FetchTimeout,
		UserAgent:        p.cfg.UserAgent,
		Concurrency:      p.cfg.FetchConcurrency,
	})
	if err != nil {
		return p.fail(report, fmt.Sprintf("fetch aborted: %v", err)), err
	}

	for _, doc := range docs {
		if doc.Failed() {
			report.Diagnostics.SourcesFailed++
			report.Diagnostics.FailedSources = append(report.Diagnostics.FailedSources, doc.SourceID)
		} else {
			report.Diagnostics.SourcesFetched++
		}
	}
	logger.Info("fetched %d sources, %d failed",
		report.Diagnostics.SourcesFetched, report.Diagnostics.SourcesFailed)

	logger.Section("Cleaning")
	report.State = domain.StateCleaning

	cleaned := make([]domain.CleanedDocument, 0, len(docs))
	for _, doc := range docs {
		c := p.normaliser.Clean(doc)
		if c.Content != "" {
			cleaned = append(cleaned, c)
		}
	}
	if err := ctx.Err(); err != nil {
		return p.fail(report, fmt.Sprintf("cancelled: %v", err)), err
	}
	if len(cleaned) == 0 {
		return p.fail(report, domain.ErrNoContent.Error()), domain.ErrNoContent
	}
	logger.Info("%d documents survived cleaning", len(cleaned))

	logger.Section("Indexing")
	report.State = domain.StateIndexing

	indexed, skipped, err := p.buildIndex(ctx, cleaned, opts)
	report.Diagnostics.ChunksIndexed = indexed
	report.Diagnostics.ChunksSkipped = skipped
	if err != nil {
		return p.fail(report, fmt.Sprintf("indexing aborted: %v", err)), err
	}
	if indexed == 0 {
		return p.fail(report, domain.ErrNoChunks.Error()), domain.ErrNoChunks
	}
	logger.Info("indexed %d chunks, skipped %d", indexed, skipped)

	if p.cfg.IndexPath != "" {
		if err := p.index.Save(p.cfg.IndexPath); err != nil {
			return p.fail(report, fmt.Sprintf("saving index: %v", err)), err
		}
		logger.Debug("index saved to %s", p.cfg.IndexPath)
	}

	return report, nil
}

// buildIndex chunks the cleaned documents, embeds the chunks with
// bounded concurrency and stores the survivors. A chunk whose embedding
// call fails is skipped and counted; cancellation aborts the stage.
func (p *PipelineService) buildIndex(
	ctx context.Context, cleaned []domain.CleanedDocument, opts driving.RunOptions,
) (indexed, skipped int, err error) {
	chunker := p.newChunker(opts.ChunkSize, opts.ChunkOverlap)

	var all []domain.Chunk
	for _, doc := range cleaned {
		if err := p.chunks.SaveDocument(ctx, doc); err != nil {
			return 0, 0, fmt.Errorf("saving document %s: %w", doc.SourceID, err)
		}

		chunks, err := chunker.Chunk(ctx, doc)
		if err != nil {
			return 0, 0, fmt.Errorf("chunking %s: %w", doc.SourceID, err)
		}
		all = append(all, chunks...)
	}
	logger.Debug("%d chunks to embed", len(all))

	embeddings := make([][]float32, len(all))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EmbedConcurrency)

	for i := range all {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, all[i].Content)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("embedding chunk %s failed: %v", all[i].ID, err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			embeddings[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, skipped, err
	}

	survivors := make([]domain.Chunk, 0, len(all))
	for i := range all {
		if embeddings[i] == nil {
			continue
		}
		all[i].Embedding = embeddings[i]
		survivors = append(survivors, all[i])
	}

	if len(survivors) == 0 {
		return 0, skipped, nil
	}

	if err := p.chunks.SaveChunks(ctx, survivors); err != nil {
		return 0, skipped, fmt.Errorf("saving chunks: %w", err)
	}
	for _, chunk := range survivors {
		if err := p.index.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return 0, skipped, fmt.Errorf("adding chunk %s to index: %w", chunk.ID, err)
		}
	}

	return len(survivors), skipped, nil
}

// fail marks the report failed with the given reason.
func (p *PipelineService) fail(report *driving.RunReport, reason string) *driving.RunReport {
	report.State = domain.StateFailed
	report.Reason = reason
	logger.Warn("pipeline failed: %s", reason)
	return report
}
