// Package embedder generates vector embeddings for text.
//
// # Architecture
//
// A Provider speaks to one embedding backend (an OpenAI-compatible HTTP
// API, Jina AI, or a deterministic local model for development). The
// Service wraps a Provider with the two-tier content-addressed cache and
// the input contracts every caller relies on:
//
//   - text that is empty after trimming embeds to the zero vector without
//     touching the provider or the cache
//   - every returned vector is checked against the configured dimension
//   - batch requests preserve input order and mix cache hits with
//     provider calls transparently
//
// # Providers
//
// HTTP providers retry transient failures with exponential backoff before
// reporting the backend unavailable. The local provider derives vectors
// from a content hash and exists so the pipeline runs end to end without
// network access.
package embedder
