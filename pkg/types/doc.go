// Package types defines the shared data model for the retrieval pipeline:
// text segments produced by chunking, candidates returned by the vector
// index, ranked results returned to callers, and the error taxonomy shared
// across components.
package types
