package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/index/hnsw"
	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/harvest-cli/internal/fetchers"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/static"
	"github.com/custodia-labs/harvest-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/harvest-cli/internal/postprocessors/chunker"
)

// keywordEmbedder maps text to keyword-count vectors so ranking is
// deterministic without a real embedding provider.
type keywordEmbedder struct{}

func (keywordEmbedder) vector(text string) []float32 {
	t := strings.ToLower(text)
	return []float32{
		float32(strings.Count(t, "volcano")) + 0.01,
		float32(strings.Count(t, "glacier")) + 0.01,
		1,
	}
}

func (e keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (keywordEmbedder) Dimensions() int   { return 3 }
func (keywordEmbedder) ModelName() string { return "keyword-count" }
func (keywordEmbedder) Close() error      { return nil }

const volcanoPage = `<!DOCTYPE html>
<html><head><title>Volcanoes</title></head>
<body>
<nav>Home | About</nav>
<h1>Volcano field notes</h1>
<p>The volcano erupted overnight. Ash from the volcano covered the valley,
and the volcano observatory raised its alert level.</p>
<footer>copyright</footer>
</body></html>`

const glacierPage = `<!DOCTYPE html>
<html><head><title>Glaciers</title></head>
<body>
<h1>Glacier survey</h1>
<p>The glacier retreated again this year. Meltwater from the glacier feeds
the river below the glacier terminus.</p>
</body></html>`

func TestPipeline_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/volcano":
			_, _ = w.Write([]byte(volcanoPage))
		case "/glacier":
			_, _ = w.Write([]byte(glacierPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	storeDir := t.TempDir()
	store, err := sqlite.NewStore(storeDir)
	require.NoError(t, err)
	defer store.Close()

	index := hnsw.New()
	defer index.Close()

	pipeline := NewPipelineService(
		fetchers.NewBatch(static.New(nil)),
		markdown.New(),
		func(size, overlap int) driven.Chunker {
			return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap))
		},
		keywordEmbedder{},
		index,
		store,
		PipelineConfig{IndexPath: filepath.Join(storeDir, "index.hnsw")},
	)

	sources := []domain.Source{
		domain.ParseSource(server.URL + "/volcano"),
		domain.ParseSource(server.URL + "/glacier"),
	}

	report, err := pipeline.Run(context.Background(), sources, "volcano eruption", driving.RunOptions{K: 2})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, domain.StateDone, report.State)
	assert.Equal(t, 2, report.Diagnostics.SourcesFetched)
	assert.Zero(t, report.Diagnostics.SourcesFailed)
	assert.Equal(t, 2, report.Diagnostics.ChunksIndexed)

	require.NotEmpty(t, report.Result.Results)
	top := report.Result.Results[0]
	assert.Equal(t, server.URL+"/volcano", top.Chunk.SourceID)
	assert.Contains(t, top.Chunk.Content, "volcano")
	for i := 1; i < len(report.Result.Results); i++ {
		assert.Greater(t, report.Result.Results[i-1].Score, report.Result.Results[i].Score)
	}

	// The persisted index answers the same query after a reload.
	reloaded := hnsw.New()
	require.NoError(t, reloaded.Load(filepath.Join(storeDir, "index.hnsw")))
	defer reloaded.Close()

	qs := NewQueryService(keywordEmbedder{}, reloaded, store)
	again, err := qs.Query(context.Background(), "volcano eruption", 2)
	require.NoError(t, err)
	require.NotEmpty(t, again.Results)
	assert.Equal(t, top.Chunk.ID, again.Results[0].Chunk.ID)
}

func TestPipeline_EndToEnd_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/glacier":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(glacierPage))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(volcanoPage))
		}
	}))
	defer server.Close()

	storeDir := t.TempDir()
	store, err := sqlite.NewStore(storeDir)
	require.NoError(t, err)
	defer store.Close()

	index := hnsw.New()
	defer index.Close()

	pipeline := NewPipelineService(
		fetchers.NewBatch(static.New(nil)),
		markdown.New(),
		func(size, overlap int) driven.Chunker {
			return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap))
		},
		keywordEmbedder{},
		index,
		store,
		PipelineConfig{},
	)

	sources := []domain.Source{
		domain.ParseSource(server.URL + "/ok"),
		domain.ParseSource(server.URL + "/missing"),
		domain.ParseSource(server.URL + "/glacier"),
	}

	report, err := pipeline.Run(context.Background(), sources, "volcano", driving.RunOptions{K: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, report.State)
	assert.Equal(t, 2, report.Diagnostics.SourcesFetched)
	assert.Equal(t, 1, report.Diagnostics.SourcesFailed)
	assert.Equal(t, []string{server.URL + "/missing"}, report.Diagnostics.FailedSources)
	require.NotEmpty(t, report.Result.Results)
	assert.Equal(t, server.URL+"/ok", report.Result.Results[0].Chunk.SourceID)
}
