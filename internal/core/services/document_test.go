package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

func TestDocumentService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	store := newMockChunkStore()
	require.NoError(t, store.SaveDocument(ctx, domain.CleanedDocument{SourceID: "https://b.example", Content: "b"}))
	require.NoError(t, store.SaveDocument(ctx, domain.CleanedDocument{SourceID: "https://a.example", Content: "a"}))

	ds := NewDocumentService(store)

	docs, err := ds.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "https://b.example", docs[0].SourceID)
	assert.Equal(t, "https://a.example", docs[1].SourceID)

	doc, err := ds.GetDocument(ctx, "https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Content)

	_, err = ds.GetDocument(ctx, "https://c.example")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
