// Package hnsw provides a vector index adapter backed by an HNSW graph.
package hnsw

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default graph parameters.
const (
	DefaultM        = 16
	DefaultEfSearch = 20
)

// Index stores chunk embeddings in an in-memory HNSW graph with
// cosine distance. String chunk IDs are mapped to the graph's uint64
// keys; the mapping is persisted alongside the graph in a gob sidecar.
type Index struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]

	idMap   map[string]uint64 // chunk ID -> internal key
	keyMap  map[uint64]string // internal key -> chunk ID
	nextKey uint64

	dimensions int
	closed     bool
}

// metadata stores ID mappings for persistence.
type metadata struct {
	IDMap      map[string]uint64
	NextKey    uint64
	Dimensions int
}

// New creates an empty index. The dimensionality is fixed by the first
// vector added, or by Load.
func New() *Index {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = DefaultM
	graph.EfSearch = DefaultEfSearch
	graph.Ml = 0.25

	return &Index{
		graph:  graph,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

// Add inserts a vector for the given chunk ID. Re-adding an existing
// ID replaces its vector.
func (x *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return domain.ErrIndexClosed
	}
	if len(embedding) == 0 {
		return fmt.Errorf("hnsw: empty embedding for chunk %s: %w", chunkID, domain.ErrInvalidInput)
	}

	if x.dimensions == 0 {
		x.dimensions = len(embedding)
	} else if len(embedding) != x.dimensions {
		return fmt.Errorf("hnsw: expected %d dimensions, got %d: %w",
			x.dimensions, len(embedding), domain.ErrDimensionMismatch)
	}

	// Lazy replacement: orphan the old key rather than deleting the
	// graph node, which coder/hnsw handles badly for the last node.
	if existingKey, exists := x.idMap[chunkID]; exists {
		delete(x.keyMap, existingKey)
		delete(x.idMap, chunkID)
	}

	key := x.nextKey
	x.nextKey++

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	normalizeInPlace(vec)

	x.graph.Add(hnsw.MakeNode(key, vec))
	x.idMap[chunkID] = key
	x.keyMap[key] = chunkID

	return nil
}

// Search finds the k nearest neighbours to the query vector, ordered
// by descending similarity.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, domain.ErrIndexClosed
	}
	if x.graph.Len() == 0 {
		return []driven.VectorHit{}, nil
	}
	if x.dimensions != 0 && len(query) != x.dimensions {
		return nil, fmt.Errorf("hnsw: expected %d dimensions, got %d: %w",
			x.dimensions, len(query), domain.ErrDimensionMismatch)
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	// Keys orphaned by replacements still occupy graph nodes and count
	// toward k, so over-fetch by the orphan count before filtering.
	fetchK := k + (x.graph.Len() - len(x.idMap))
	nodes := x.graph.Search(normalized, fetchK)

	hits := make([]driven.VectorHit, 0, len(nodes))
	for _, node := range nodes {
		id, exists := x.keyMap[node.Key]
		if !exists {
			continue
		}

		distance := x.graph.Distance(normalized, node.Value)
		hits = append(hits, driven.VectorHit{
			ChunkID: id,
			// Cosine distance ranges 0..2; map to similarity 0..1.
			Similarity: 1.0 - float64(distance)/2.0,
		})
	}
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Count returns the number of stored vectors.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0
	}
	return len(x.idMap)
}

// Save persists the index to disk using a temp file plus rename, with
// the ID mappings in a gob sidecar at path + ".meta".
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return domain.ErrIndexClosed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	if err := x.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename index file: %w", err)
	}

	if err := x.saveMetadata(path + ".meta"); err != nil {
		return fmt.Errorf("save index metadata: %w", err)
	}

	return nil
}

func (x *Index) saveMetadata(path string) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}

	meta := metadata{
		IDMap:      x.idMap,
		NextKey:    x.nextKey,
		Dimensions: x.dimensions,
	}

	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close metadata file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Load replaces the index contents from disk.
func (x *Index) Load(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return domain.ErrIndexClosed
	}

	if err := x.loadMetadata(path + ".meta"); err != nil {
		return fmt.Errorf("load index metadata: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	// coder/hnsw Import requires an io.ByteReader.
	if err := x.graph.Import(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("import graph: %w", err)
	}

	return nil
}

func (x *Index) loadMetadata(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open metadata file: %w", err)
	}
	defer file.Close()

	var meta metadata
	if err := gob.NewDecoder(file).Decode(&meta); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}

	x.idMap = meta.IDMap
	x.keyMap = make(map[uint64]string, len(meta.IDMap))
	x.nextKey = meta.NextKey
	x.dimensions = meta.Dimensions

	for id, key := range x.idMap {
		x.keyMap[key] = id
	}

	return nil
}

// Close releases resources. Subsequent operations return ErrIndexClosed.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	x.graph = nil

	return nil
}

// normalizeInPlace scales a vector to unit length.
func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}
