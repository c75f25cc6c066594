package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates the embedding provider credential is not
	// configured. Raised at startup, before any stage runs.
	ErrMissingAPIKey = errors.New("embedding API key not configured")

	// ErrNoContent indicates every cleaned document was empty, so no index
	// can be built. The pipeline terminates in the failed state.
	ErrNoContent = errors.New("no content survived cleaning")

	// ErrNoChunks indicates chunking and embedding produced nothing usable.
	ErrNoChunks = errors.New("no chunks were indexed")

	// ErrDimensionMismatch indicates a vector's dimensionality does not
	// match the index. Vectors of different dimensions never share an index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexClosed indicates an operation on a closed index.
	ErrIndexClosed = errors.New("index closed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
