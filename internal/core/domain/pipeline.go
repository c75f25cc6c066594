package domain

// PipelineState is the orchestrator's position in the fixed stage sequence.
// Transitions are strictly forward; Failed is terminal and reachable from
// any stage.
type PipelineState int

const (
	// StateFetching means sources are being fetched.
	StateFetching PipelineState = iota

	// StateCleaning means fetched documents are being normalised.
	StateCleaning

	// StateIndexing means cleaned documents are being chunked and embedded.
	StateIndexing

	// StateQuerying means the query is being embedded and searched.
	StateQuerying

	// StateDone is the successful terminal state.
	StateDone

	// StateFailed is the unsuccessful terminal state.
	StateFailed
)

// String returns the state name used in logs and error messages.
func (s PipelineState) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateCleaning:
		return "CLEANING"
	case StateIndexing:
		return "INDEXING"
	case StateQuerying:
		return "QUERYING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state ends a run.
func (s PipelineState) Terminal() bool {
	return s == StateDone || s == StateFailed
}
