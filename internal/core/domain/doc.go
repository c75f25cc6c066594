// Package domain holds the core value objects of the harvest pipeline:
// sources, documents, chunks, query results and the orchestrator state
// machine. It has no dependencies on adapters or external services.
package domain
