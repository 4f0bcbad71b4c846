// Package indexer runs the batch indexing pipeline: discover document
// files, extract text, chunk into segments, embed, and upsert into the
// vector index.
//
// Extraction and chunking run concurrently across files with a bounded
// worker pool. Embedding and upserting run in fixed-size batches over the
// collected segments. A failure in any file or batch is recorded and the
// pipeline continues; the returned Statistics lists every error message
// alongside counts and per-stage timings.
//
// Only one indexing run may be active at a time.
package indexer
