package types

import "errors"

// Error taxonomy for the retrieval pipeline. Components wrap these with
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is.
var (
	// ErrConfiguration indicates invalid chunking or search parameters.
	// Checked once at construction time, fatal for the component.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrQuery indicates a malformed user query (empty, whitespace-only,
	// or over the configured length limit). Recoverable by the caller.
	ErrQuery = errors.New("invalid query")

	// ErrEmbeddingUnavailable indicates the embedding provider failed or
	// returned a malformed vector. Not retried inside the pipeline.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrIndexUnavailable indicates the vector index failed or timed out.
	// Not retried inside the pipeline.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrCacheCorrupt indicates a persistent cache entry failed to decode.
	// Always self-healed by treating the entry as a miss; never returned
	// from cache lookups.
	ErrCacheCorrupt = errors.New("corrupt cache entry")
)

// Validation errors for result types.
var (
	ErrInvalidSegmentID = errors.New("invalid segment ID")
	ErrInvalidScore     = errors.New("score must be between 0 and 1")
)
