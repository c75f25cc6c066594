package domain

// SearchResult pairs a chunk with its similarity score for one query.
type SearchResult struct {
	// Chunk is the matched chunk, hydrated from the chunk store.
	Chunk Chunk

	// Score is the cosine similarity against the query vector, in [0, 1].
	Score float64
}

// QueryResult is the ordered output of querying an index.
// Results are sorted by descending score; ties are broken by the order
// chunks entered the index (earlier source, earlier position wins).
type QueryResult struct {
	// Query is the text that was embedded and searched.
	Query string

	// Results holds at most the requested K matches.
	Results []SearchResult
}

// Diagnostics summarises non-fatal failures captured during a run.
// The CLI prints them alongside results; failures are never dropped silently.
type Diagnostics struct {
	// SourcesFetched is the number of sources fetched successfully.
	SourcesFetched int

	// SourcesFailed is the number of sources whose fetch failed.
	SourcesFailed int

	// FailedSources lists the locators that failed, in input order.
	FailedSources []string

	// ChunksIndexed is the number of chunks embedded and stored.
	ChunksIndexed int

	// ChunksSkipped is the number of chunks dropped because their
	// embedding call failed.
	ChunksSkipped int
}
