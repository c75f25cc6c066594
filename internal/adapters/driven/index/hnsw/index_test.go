package hnsw

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

func TestAddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := New()
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "c", []float32{0.9, 0.1, 0}))

	assert.Equal(t, 3, idx.Count())

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "a", hits[0].ChunkID)
	assert.Equal(t, "c", hits[1].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-5)
}

func TestSearch_Empty(t *testing.T) {
	idx := New()
	defer idx.Close()

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := New()
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))

	err := idx.Add(ctx, "b", []float32{1, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	_, err = idx.Search(ctx, []float32{1, 0, 0, 0}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestAdd_ReplacesExistingID(t *testing.T) {
	ctx := context.Background()
	idx := New()
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{0, 1, 0}))

	assert.Equal(t, 1, idx.Count())

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-5)
}

func TestSearch_ReplacementsDoNotShrinkResults(t *testing.T) {
	ctx := context.Background()
	idx := New()
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "c", []float32{0, 0, 1}))

	// Each replacement leaves an orphaned graph node behind.
	require.NoError(t, idx.Add(ctx, "a", []float32{0.9, 0.1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0.1, 0.9, 0}))

	assert.Equal(t, 3, idx.Count())

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)

	// k caps the result even with orphans present.
	hits, err = idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.hnsw")

	idx := New()
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "c", []float32{0, 0, 1}))

	query := []float32{0.7, 0.7, 0}
	before, err := idx.Search(ctx, query, 3)
	require.NoError(t, err)

	require.NoError(t, idx.Save(path))
	require.NoError(t, idx.Close())

	loaded := New()
	defer loaded.Close()
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, 3, loaded.Count())

	after, err := loaded.Search(ctx, query, 3)
	require.NoError(t, err)
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].ChunkID, after[i].ChunkID)
		assert.InDelta(t, before[i].Similarity, after[i].Similarity, 1e-6)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	idx := New()
	defer idx.Close()

	err := idx.Load(filepath.Join(t.TempDir(), "nope.hnsw"))
	require.Error(t, err)
}

func TestClosedIndex(t *testing.T) {
	ctx := context.Background()
	idx := New()
	require.NoError(t, idx.Close())

	err := idx.Add(ctx, "a", []float32{1})
	assert.True(t, errors.Is(err, domain.ErrIndexClosed))

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.True(t, errors.Is(err, domain.ErrIndexClosed))

	assert.Equal(t, 0, idx.Count())
	assert.NoError(t, idx.Close())
}
