// Package rendered provides the headless-browser fetch strategy for pages
// that require JavaScript execution. It drives Chrome via chromedp and
// feeds the rendered DOM through the same markdown extraction as the
// static fetcher.
package rendered

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/extract"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// DefaultTimeout bounds a single navigation when none is configured.
// Rendering needs more headroom than a static GET.
const DefaultTimeout = 60 * time.Second

// Fetcher retrieves remote pages with a headless browser.
type Fetcher struct{}

// New creates a rendered fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Name returns the strategy identifier.
func (f *Fetcher) Name() string { return "rendered" }

// Supports reports whether this fetcher handles the source kind.
func (f *Fetcher) Supports(kind domain.SourceKind) bool {
	return kind == domain.SourceURL
}

// Fetch navigates to the source, waits for the page to settle and extracts
// markdown from the rendered DOM. Failures are recorded on the document.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, opts driven.FetchOptions) domain.Document {
	doc := domain.Document{SourceID: src.Locator, URI: src.Locator, Status: domain.FetchOK}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(src.Locator),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		logger.Warn("rendered fetch failed for %s: %v", src.Locator, err)
		doc.Status = domain.FetchError
		doc.Err = err.Error()
		return doc
	}

	md, err := extract.Markdown(html)
	if err != nil {
		doc.Status = domain.FetchError
		doc.Err = err.Error()
		return doc
	}

	logger.Debug("rendered fetch %s: %d chars", src.Locator, len(md))
	doc.Content = md
	return doc
}
