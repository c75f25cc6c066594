// Package file provides the local filesystem fetch strategy.
// Markdown and plain text files pass through as-is; HTML files go through
// the same markdown extraction as remote pages.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/extract"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher reads local files.
type Fetcher struct{}

// New creates a filesystem fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Name returns the strategy identifier.
func (f *Fetcher) Name() string { return "file" }

// Supports reports whether this fetcher handles the source kind.
func (f *Fetcher) Supports(kind domain.SourceKind) bool {
	return kind == domain.SourceFile
}

// Fetch reads one file. Read failures are recorded on the document.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, _ driven.FetchOptions) domain.Document {
	doc := domain.Document{SourceID: src.Locator, URI: src.Locator, Status: domain.FetchOK}

	if err := ctx.Err(); err != nil {
		doc.Status = domain.FetchError
		doc.Err = err.Error()
		return doc
	}

	path := strings.TrimPrefix(src.Locator, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("file fetch failed for %s: %v", path, err)
		doc.Status = domain.FetchError
		doc.Err = err.Error()
		return doc
	}

	content := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		md, err := extract.Markdown(content)
		if err != nil {
			doc.Status = domain.FetchError
			doc.Err = err.Error()
			return doc
		}
		content = md
	}

	logger.Debug("file fetch %s: %d chars", path, len(content))
	doc.Content = content
	return doc
}

// ListTextFiles walks a directory and returns sources for every markdown
// and text file found, in lexical order.
func ListTextFiles(dir string) ([]domain.Source, error) {
	var sources []domain.Source
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt", ".text":
			sources = append(sources, domain.Source{Locator: path, Kind: domain.SourceFile})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}
