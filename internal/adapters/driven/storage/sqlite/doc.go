// Package sqlite provides a SQLite-based implementation of the ChunkStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It persists cleaned
// documents and their chunks, including raw embedding vectors, so a saved
// store can answer queries without re-fetching or re-embedding.
//
// # Schema
//
// The database schema is managed through versioned migrations embedded from
// the migrations/ directory.
//
// # Data Location
//
// The database lives at <store-dir>/chunks.db next to the vector index files.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
