package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/index/hnsw"
	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/services"
	"github.com/custodia-labs/harvest-cli/internal/fetchers"
	"github.com/custodia-labs/harvest-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/harvest-cli/internal/postprocessors/chunker"
)

// indexFileName is the vector index file inside a store directory.
const indexFileName = "index.hnsw"

// pipelineDeps bundles everything a pipeline run needs plus the
// handles that must be closed afterwards.
type pipelineDeps struct {
	pipeline *services.PipelineService
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	chunks   *sqlite.Store
}

// Close releases the pipeline's resources.
func (d *pipelineDeps) Close() {
	if d.embedder != nil {
		_ = d.embedder.Close()
	}
	if d.index != nil {
		_ = d.index.Close()
	}
	if d.chunks != nil {
		_ = d.chunks.Close()
	}
}

// newPipeline wires a full pipeline over a store directory. When
// persist is true the vector index is saved there after indexing.
func newPipeline(cfg driven.ConfigStore, storeDir string, render, persist bool, timeout time.Duration) (*pipelineDeps, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	chunks, err := sqlite.NewStore(storeDir)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("opening chunk store: %w", err)
	}

	index := hnsw.New()

	threshold := markdown.DefaultDedupThreshold
	if cfg != nil {
		if v := cfg.GetFloat(file.KeyDedupThreshold); v > 0 {
			threshold = v
		}
	}

	pcfg := pipelineConfig(cfg, timeout)
	if persist {
		pcfg.IndexPath = filepath.Join(storeDir, indexFileName)
	}

	pipeline := services.NewPipelineService(
		newBatchFetcher(render),
		markdown.New(markdown.WithDedupThreshold(threshold)),
		func(size, overlap int) driven.Chunker {
			return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap))
		},
		embedder,
		index,
		chunks,
		pcfg,
	)

	return &pipelineDeps{
		pipeline: pipeline,
		embedder: embedder,
		index:    index,
		chunks:   chunks,
	}, nil
}

// pipelineConfig resolves the pipeline's infrastructure settings from
// the config file, falling back to the package defaults.
func pipelineConfig(cfg driven.ConfigStore, timeout time.Duration) services.PipelineConfig {
	pcfg := services.PipelineConfig{
		FetchTimeout:     timeout,
		FetchConcurrency: fetchers.DefaultConcurrency,
		EmbedConcurrency: services.DefaultEmbedConcurrency,
	}
	if cfg == nil {
		return pcfg
	}
	if v := cfg.GetInt(file.KeyFetchConcurrency); v > 0 {
		pcfg.FetchConcurrency = v
	}
	if v := cfg.GetInt(file.KeyEmbedConcurrency); v > 0 {
		pcfg.EmbedConcurrency = v
	}
	return pcfg
}

// openStore loads a persisted store directory for querying.
func openStore(cfg driven.ConfigStore, storeDir string) (driven.EmbeddingService, driven.VectorIndex, *sqlite.Store, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	index := hnsw.New()
	if err := index.Load(filepath.Join(storeDir, indexFileName)); err != nil {
		embedder.Close()
		return nil, nil, nil, fmt.Errorf("loading index from %s: %w", storeDir, err)
	}

	chunks, err := sqlite.NewStore(storeDir)
	if err != nil {
		embedder.Close()
		index.Close()
		return nil, nil, nil, fmt.Errorf("opening chunk store: %w", err)
	}

	return embedder, index, chunks, nil
}
