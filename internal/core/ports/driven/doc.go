// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): fetchers, the normaliser, the embedding
// provider, the vector index and the chunk store.
package driven
