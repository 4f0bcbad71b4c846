// Package searcher coordinates the semantic search pipeline.
//
// # Pipeline
//
// A search request moves through fixed stages: validation, query cache
// lookup, query embedding, vector index query, ranking, and cache store.
// Per-stage timings are reported on every response.
//
// # Ranking
//
// The ranker refines raw similarity scores with three deterministic
// adjustments applied in order:
//
//  1. keyword boost for exact word overlap with the query, capped at 0.1
//  2. length penalties for very short (under 10 words) and very long
//     (over 500 words) segments
//  3. a per-file diversity quota of max(1, N/3) results; overflow keeps
//     its place in the list but at a 0.8 score penalty
//
// Final scores are clamped to [0, 1] and every adjustment is recorded in
// the result's explanation map.
//
// # Query cache
//
// Unfiltered queries are cached for a fixed TTL under a hash of the
// query text, limit, and threshold. The cache holds at most a fixed
// number of entries and evicts the single oldest entry by insertion time
// when full. Filtered queries are never cached. Cached responses are
// deep copies in both directions.
package searcher
