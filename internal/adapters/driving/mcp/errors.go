// Package mcp provides an MCP (Model Context Protocol) server adapter for
// harvest. It exposes a persisted store's query operation to AI assistants.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
