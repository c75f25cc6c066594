package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
)

// FetchOptions configures a fetch pass.
type FetchOptions struct {
	// RenderJavaScript selects the rendered (headless browser) strategy
	// over the static HTTP fetch.
	RenderJavaScript bool

	// Timeout bounds a single fetch attempt.
	Timeout time.Duration

	// UserAgent is sent with remote requests.
	UserAgent string

	// Concurrency bounds how many sources are fetched at once.
	// Zero means sequential.
	Concurrency int
}

// BatchFetcher retrieves a whole batch of sources with bounded
// concurrency. Output order matches input order; per-source failures are
// recorded on their documents and the only returned error is
// cancellation.
type BatchFetcher interface {
	Fetch(ctx context.Context, sources []domain.Source, opts FetchOptions) ([]domain.Document, error)
}

// Fetcher retrieves raw content for a single source.
// Each strategy (static HTTP, rendered browser, local file) implements this
// interface; the variant is selected by configuration, never by runtime
// type inspection.
type Fetcher interface {
	// Name returns the strategy identifier for logging.
	Name() string

	// Supports reports whether this fetcher can handle the source kind.
	Supports(kind domain.SourceKind) bool

	// Fetch retrieves one source and returns its document.
	// A failed fetch is reported through the document's Status field and a
	// nil error: one failing source must not abort a batch. Only a single
	// attempt is made; retry policy is deliberately out of scope.
	Fetch(ctx context.Context, src domain.Source, opts FetchOptions) domain.Document
}
