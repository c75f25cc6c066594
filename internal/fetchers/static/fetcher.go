// Package static provides the plain HTTP fetch strategy.
// It performs a single GET per source and extracts readable markdown from
// the response body. JavaScript is not executed; see the rendered fetcher
// for dynamic pages.
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/extract"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// DefaultTimeout bounds a single fetch attempt when none is configured.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "Mozilla/5.0 (compatible; HarvestBot/1.0)"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20 // 10 MiB

// Fetcher retrieves remote pages over plain HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a static HTTP fetcher. A nil client uses http.DefaultClient
// semantics with per-request timeouts from FetchOptions.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client}
}

// Name returns the strategy identifier.
func (f *Fetcher) Name() string { return "static" }

// Supports reports whether this fetcher handles the source kind.
func (f *Fetcher) Supports(kind domain.SourceKind) bool {
	return kind == domain.SourceURL
}

// Fetch performs one GET and converts the body to markdown.
// Failures are recorded on the document rather than returned, so a failing
// source never aborts the batch.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, opts driven.FetchOptions) domain.Document {
	doc := domain.Document{SourceID: src.Locator, URI: src.Locator, Status: domain.FetchOK}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Locator, http.NoBody)
	if err != nil {
		return failed(doc, fmt.Errorf("create request: %w", err))
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return failed(doc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return failed(doc, fmt.Errorf("http status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failed(doc, fmt.Errorf("read body: %w", err))
	}

	content := string(body)
	if isHTML(resp.Header.Get("Content-Type"), content) {
		md, err := extract.Markdown(content)
		if err != nil {
			return failed(doc, err)
		}
		content = md
	}

	logger.Debug("static fetch %s: %d chars", src.Locator, len(content))
	doc.Content = content
	return doc
}

// failed marks the document as a fetch error with the reason attached.
func failed(doc domain.Document, err error) domain.Document {
	logger.Warn("fetch failed for %s: %v", doc.SourceID, err)
	doc.Status = domain.FetchError
	doc.Err = err.Error()
	doc.Content = ""
	return doc
}

// isHTML decides whether a response body should go through HTML extraction.
func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
