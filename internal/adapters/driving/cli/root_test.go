package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

func TestCollectSources(t *testing.T) {
	t.Run("urls become url sources in order", func(t *testing.T) {
		sources, err := collectSources([]string{"https://a.example", "https://b.example"}, "")
		require.NoError(t, err)
		require.Len(t, sources, 2)
		assert.Equal(t, "https://a.example", sources[0].Locator)
		assert.Equal(t, domain.SourceURL, sources[0].Kind)
		assert.Equal(t, "https://b.example", sources[1].Locator)
	})

	t.Run("input file becomes a file source", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("# notes"), 0o644))

		sources, err := collectSources(nil, path)
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, path, sources[0].Locator)
		assert.Equal(t, domain.SourceFile, sources[0].Kind)
	})

	t.Run("input directory lists text files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte{0x89}, 0o644))

		sources, err := collectSources(nil, dir)
		require.NoError(t, err)
		assert.Len(t, sources, 2)
		for _, s := range sources {
			assert.Equal(t, domain.SourceFile, s.Kind)
		}
	})

	t.Run("urls and input combine", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("n"), 0o644))

		sources, err := collectSources([]string{"https://a.example"}, path)
		require.NoError(t, err)
		require.Len(t, sources, 2)
		assert.Equal(t, domain.SourceURL, sources[0].Kind)
		assert.Equal(t, domain.SourceFile, sources[1].Kind)
	})

	t.Run("missing input path returns error", func(t *testing.T) {
		_, err := collectSources(nil, "/no/such/path")
		assert.Error(t, err)
	})

	t.Run("no sources returns invalid input", func(t *testing.T) {
		_, err := collectSources(nil, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDocumentFileName(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"url with path", "https://example.com/docs/intro", "example.com_docs_intro.md"},
		{"url without path", "https://example.com", "example.com.md"},
		{"url with query", "https://example.com/page?id=1", "example.com_page.md"},
		{"local file keeps md suffix", "notes/readme.md", "notes_readme.md"},
		{"local text file", "notes/todo.txt", "notes_todo.txt.md"},
		{"empty uri", "", "document.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := documentFileName(domain.Document{URI: tt.uri})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnippet(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", snippet("hello", 10))
	})

	t.Run("long content truncated with ellipsis", func(t *testing.T) {
		assert.Equal(t, "hello...", snippet("hello world", 5))
	})

	t.Run("truncates on rune boundaries", func(t *testing.T) {
		assert.Equal(t, "héllo...", snippet("héllo wörld", 5))
	})

	t.Run("exact length unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", snippet("hello", 5))
	})
}

func TestFetchTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), fetchTimeout(0))
	assert.Equal(t, time.Duration(0), fetchTimeout(-1))
	assert.Equal(t, 30*time.Second, fetchTimeout(30))
}
