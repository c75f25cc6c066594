package mcp

import (
	"context"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result domain.QueryResult
	err    error
	lastK  int
}

func (m *mockQueryService) Query(_ context.Context, text string, k int) (domain.QueryResult, error) {
	m.lastK = k
	if m.err != nil {
		return domain.QueryResult{}, m.err
	}
	m.result.Query = text
	return m.result, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs []domain.CleanedDocument
	err  error
}

func (m *mockDocumentService) ListDocuments(_ context.Context) ([]domain.CleanedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) GetDocument(_ context.Context, sourceID string) (*domain.CleanedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].SourceID == sourceID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
