package mcp

import (
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Query answers similarity queries against the persisted store.
	Query driving.QueryService

	// Documents exposes the stored cleaned documents as resources.
	// Optional; resource reads degrade gracefully when unset.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
