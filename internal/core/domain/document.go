package domain

// FetchStatus records the outcome of fetching one source.
type FetchStatus string

const (
	// FetchOK indicates content was retrieved.
	FetchOK FetchStatus = "ok"

	// FetchError indicates the fetch failed; the document carries no content.
	FetchError FetchStatus = "fetch_error"
)

// Document is the raw output of fetching one Source.
// Exactly one Document exists per input Source, even when the fetch fails.
// It is not mutated after creation.
type Document struct {
	// SourceID is the originating source locator.
	SourceID string

	// URI is the resolved location the content was read from.
	// Usually equal to SourceID; may differ after redirects.
	URI string

	// Content is the raw markdown/text extracted by the fetcher.
	Content string

	// Status is the fetch outcome.
	Status FetchStatus

	// Err holds a human-readable failure reason when Status is FetchError.
	Err string
}

// Failed reports whether the fetch for this document failed.
func (d Document) Failed() bool {
	return d.Status == FetchError
}

// CleanedDocument is the normalised form of one Document.
// The source identifier is preserved 1:1; the text may shrink.
type CleanedDocument struct {
	// SourceID is the originating source locator.
	SourceID string

	// Content is the cleaned text. Empty for failed fetches, which
	// downstream stages treat as "no chunks contributed".
	Content string
}

// Chunk is a bounded-length window of one CleanedDocument's text.
// Chunks from one document never overlap beyond the configured overlap
// window and never cross document boundaries.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID traces back to exactly one originating Source.
	SourceID string

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Offset is the rune offset of the chunk start within the cleaned text.
	Offset int

	// Embedding is the vector representation, populated by the indexer.
	// Its length is fixed per index; mixing dimensions is rejected.
	Embedding []float32
}
