package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultK is the number of results returned when none is requested.
const DefaultK = 4

// QueryService answers queries against an index and its chunk store.
// The query text is embedded exactly once per call; stored chunks are
// never re-embedded.
type QueryService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	chunks   driven.ChunkStore
}

// NewQueryService creates a query service over an existing index.
func NewQueryService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	chunks driven.ChunkStore,
) *QueryService {
	return &QueryService{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
	}
}

// Query embeds the text and returns the top-K most similar chunks,
// ordered by descending score. Equal scores are broken by the order
// chunks entered the store, so repeated queries return identical results.
func (s *QueryService) Query(ctx context.Context, text string, k int) (domain.QueryResult, error) {
	result := domain.QueryResult{Query: text}

	text = strings.TrimSpace(text)
	if text == "" {
		return result, fmt.Errorf("query text is empty: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultK
	}

	logger.Debug("embedding query (%d runes)", len([]rune(text)))
	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return result, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Search(ctx, queryVec, k)
	if err != nil {
		return result, fmt.Errorf("searching index: %w", err)
	}
	logger.Debug("index returned %d hits", len(hits))

	order, err := s.insertionOrder(ctx)
	if err != nil {
		return result, err
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.chunks.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("hit %s has no stored chunk, skipping", hit.ChunkID)
				continue
			}
			return result, fmt.Errorf("hydrating chunk %s: %w", hit.ChunkID, err)
		}
		results = append(results, domain.SearchResult{Chunk: *chunk, Score: hit.Similarity})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].Chunk.ID] < order[results[j].Chunk.ID]
	})

	if len(results) > k {
		results = results[:k]
	}

	result.Results = results
	return result, nil
}

// insertionOrder maps chunk IDs to their store insertion rank.
func (s *QueryService) insertionOrder(ctx context.Context) (map[string]int, error) {
	all, err := s.chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}

	order := make(map[string]int, len(all))
	for i, c := range all {
		order[c.ID] = i
	}
	return order, nil
}
