// Package chunker turns raw extracted document text into overlapping,
// context-preserving segments ready for embedding.
//
// # Pipeline
//
// Chunking always runs in two passes. Cleaning first: whitespace runs
// collapse to single spaces, characters outside a safe Unicode allowlist
// are stripped, and repeated terminal punctuation collapses, so that
// sentence-boundary detection is reliable. Splitting second: sentences are
// greedily accumulated into chunks of at most maxSize characters, with a
// word-boundary fallback for sentences that are themselves oversized.
//
// # Overlap
//
// Each segment after the first is prefixed with the trailing words of its
// predecessor so retrieval keeps cross-boundary context. The prefix length
// is the configured character overlap divided by OverlapWordDivisor,
// an approximate word-based budget rather than an exact character count.
//
// # Basic Usage
//
//	c, err := chunker.New(1000, 200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	segments := c.Chunk(text, chunker.SourceInfo{Path: "report.txt"})
//
// Chunk is pure: identical inputs always yield identical segments.
package chunker
