package services

import (
	"context"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the cleaned documents behind a store.
type DocumentService struct {
	chunks driven.ChunkStore
}

// NewDocumentService creates a document service over a chunk store.
func NewDocumentService(chunks driven.ChunkStore) *DocumentService {
	return &DocumentService{chunks: chunks}
}

// ListDocuments returns all stored documents in insertion order.
func (d *DocumentService) ListDocuments(ctx context.Context) ([]domain.CleanedDocument, error) {
	return d.chunks.ListDocuments(ctx)
}

// GetDocument retrieves one document by its source ID.
func (d *DocumentService) GetDocument(ctx context.Context, sourceID string) (*domain.CleanedDocument, error) {
	return d.chunks.GetDocument(ctx, sourceID)
}
