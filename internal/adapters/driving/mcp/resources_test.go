package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

func TestExtractSourceID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "harvest://documents/https://example.com/docs",
			expected: "https://example.com/docs",
		},
		{
			name:     "file path source",
			uri:      "harvest://documents/notes/readme.md",
			expected: "notes/readme.md",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSourceID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			docs: []domain.CleanedDocument{
				{SourceID: "https://example.com/docs", Content: "cleaned markdown"},
				{SourceID: "notes.md", Content: "local notes"},
			},
		}

		ports := &Ports{Query: &mockQueryService{}, Documents: mockDocs}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "https://example.com/docs")
		assert.Contains(t, result.Contents[0].Text, "harvest://documents/notes.md")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: errors.New("database error")}

		ports := &Ports{Query: &mockQueryService{}, Documents: mockDocs}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents/notes.md")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns document content", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			docs: []domain.CleanedDocument{
				{SourceID: "https://example.com/docs", Content: "cleaned markdown"},
			},
		}

		ports := &Ports{Query: &mockQueryService{}, Documents: mockDocs}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents/https://example.com/docs")
		result, err := server.handleDocumentContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "cleaned markdown", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("unknown document returns error", func(t *testing.T) {
		mockDocs := &mockDocumentService{}

		ports := &Ports{Query: &mockQueryService{}, Documents: mockDocs}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("harvest://documents/missing.md")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("malformed URI returns not found", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}, Documents: &mockDocumentService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("file://documents/notes.md")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})
}
