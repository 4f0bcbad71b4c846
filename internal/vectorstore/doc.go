// Package vectorstore provides access to the Qdrant vector index over its
// REST API.
//
// The Index interface is what the search and indexing pipelines depend on;
// Qdrant is the production implementation. Point IDs are UUIDv5 values
// derived from the segment ID, so re-indexing the same document overwrites
// its points instead of duplicating them.
//
// Filters translate a small metadata condition language: a plain value is
// an exact-match condition, and a map with a "range" key becomes a
// numeric gte/lte condition. All conditions are ANDed.
package vectorstore
