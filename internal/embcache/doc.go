// Package embcache implements the two-tier content-addressed embedding
// cache. The key for both tiers is the fingerprint of the trimmed text
// (SHA-256 hex); identical normalized text always maps to the identical
// vector once cached.
//
// The memory tier is a bounded accelerator: entries are admitted only
// while it has spare capacity and are never evicted to make room. The
// persistent tier is authoritative and unbounded, backed by a SQLite
// key-value table whose values use a versioned binary record format
// (magic, version, dimension, float32 array). A record that fails to
// decode is deleted and treated as a miss; corruption never reaches the
// caller.
//
// Both tiers are safe for concurrent use. There is no single-flight
// de-duplication: two concurrent misses for the same text may both
// compute and both store, which is an idempotent overwrite.
package embcache
