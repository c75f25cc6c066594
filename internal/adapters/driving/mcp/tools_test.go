package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	t.Run("returns query results", func(t *testing.T) {
		mock := &mockQueryService{
			result: domain.QueryResult{
				Results: []domain.SearchResult{
					{
						Chunk: domain.Chunk{
							ID:       "chunk-1",
							SourceID: "https://example.com/docs",
							Position: 2,
							Content:  "how to configure the thing",
						},
						Score: 0.91,
					},
					{
						Chunk: domain.Chunk{
							ID:       "chunk-2",
							SourceID: "https://example.com/docs",
							Position: 5,
							Content:  "more configuration details",
						},
						Score: 0.74,
					},
				},
			},
		}

		server, err := NewServer(&Ports{Query: mock})
		require.NoError(t, err)

		_, output, err := server.handleQuery(context.Background(), nil, QueryInput{
			Query: "configure",
			K:     2,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, output.Count)
		require.Len(t, output.Results, 2)
		assert.Equal(t, "chunk-1", output.Results[0].ChunkID)
		assert.Equal(t, "https://example.com/docs", output.Results[0].SourceID)
		assert.Equal(t, 2, output.Results[0].Position)
		assert.InDelta(t, 0.91, output.Results[0].Score, 1e-9)
		assert.Equal(t, "how to configure the thing", output.Results[0].Content)
		assert.Equal(t, "chunk-2", output.Results[1].ChunkID)
	})

	t.Run("passes k through to the query service", func(t *testing.T) {
		mock := &mockQueryService{}
		server, err := NewServer(&Ports{Query: mock})
		require.NoError(t, err)

		_, _, err = server.handleQuery(context.Background(), nil, QueryInput{
			Query: "anything",
			K:     7,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, mock.lastK)
	})

	t.Run("empty index returns zero count", func(t *testing.T) {
		mock := &mockQueryService{}
		server, err := NewServer(&Ports{Query: mock})
		require.NoError(t, err)

		_, output, err := server.handleQuery(context.Background(), nil, QueryInput{
			Query: "nothing here",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Results)
	})

	t.Run("query error is propagated", func(t *testing.T) {
		mock := &mockQueryService{err: errors.New("index unavailable")}
		server, err := NewServer(&Ports{Query: mock})
		require.NoError(t, err)

		_, _, err = server.handleQuery(context.Background(), nil, QueryInput{
			Query: "configure",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index unavailable")
	})
}
