// Package fetchers coordinates the fetch strategies and runs batches of
// sources with bounded concurrency. Output order always matches input
// order regardless of completion order.
package fetchers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// DefaultConcurrency bounds parallel fetches when none is configured.
const DefaultConcurrency = 4

// Batch fans sources out across the registered fetch strategies.
type Batch struct {
	fetchers []driven.Fetcher
}

// NewBatch creates a batch fetcher over the given strategies.
// Strategies are consulted in order; the first that supports a source's
// kind handles it.
func NewBatch(fetchers ...driven.Fetcher) *Batch {
	return &Batch{fetchers: fetchers}
}

// Fetch retrieves all sources and returns one document per source, in
// input order. Individual failures are recorded on their documents; the
// only error returned is context cancellation.
func (b *Batch) Fetch(ctx context.Context, sources []domain.Source, opts driven.FetchOptions) ([]domain.Document, error) {
	docs := make([]domain.Document, len(sources))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes only its own slot, so the output
			// ordering is fixed by input position.
			docs[i] = b.fetchOne(gctx, src, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("fetched %d sources", len(docs))
	return docs, nil
}

// fetchOne dispatches a single source to its strategy.
func (b *Batch) fetchOne(ctx context.Context, src domain.Source, opts driven.FetchOptions) domain.Document {
	for _, f := range b.fetchers {
		if f.Supports(src.Kind) {
			return f.Fetch(ctx, src, opts)
		}
	}
	return domain.Document{
		SourceID: src.Locator,
		URI:      src.Locator,
		Status:   domain.FetchError,
		Err:      fmt.Sprintf("no fetcher for source kind %q", src.Kind),
	}
}
