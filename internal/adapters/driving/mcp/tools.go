package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of results to return (default 4)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`
}

// QueryResultOutput represents a single query result.
type QueryResultOutput struct {
	ChunkID  string  `json:"chunk_id"`
	SourceID string  `json:"source_id"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find chunks similar to a query in the harvested index",
	}, s.handleQuery)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	result, err := s.ports.Query.Query(ctx, input.Query, input.K)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results: make([]QueryResultOutput, len(result.Results)),
		Count:   len(result.Results),
	}

	for i, r := range result.Results {
		output.Results[i] = QueryResultOutput{
			ChunkID:  r.Chunk.ID,
			SourceID: r.Chunk.SourceID,
			Position: r.Chunk.Position,
			Score:    r.Score,
			Content:  r.Chunk.Content,
		}
	}

	return nil, output, nil
}
