package searcher

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/semdex/semdex/pkg/types"
)

// Query cache defaults
const (
	DefaultQueryCacheTTL  = 300 * time.Second
	DefaultQueryCacheSize = 100
)

// cacheEntry holds one cached result list with its insertion time.
type cacheEntry struct {
	results  []types.RankedResult
	storedAt time.Time
}

// queryCache caches ranked result lists for unfiltered queries. Entries
// expire after a fixed TTL; when the cache is full, the single oldest
// entry by insertion time is evicted. Refreshing a key resets its age.
type queryCache struct {
	mu      sync.RWMutex
	entries map[[32]byte]*cacheEntry
	ttl     time.Duration
	maxSize int
}

func newQueryCache(ttl time.Duration, maxSize int) *queryCache {
	if ttl <= 0 {
		ttl = DefaultQueryCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultQueryCacheSize
	}
	return &queryCache{
		entries: make(map[[32]byte]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// querySignature computes the cache key for a normalized query and its
// effective parameters. Different limits or thresholds are distinct
// entries.
func querySignature(query string, limit int, threshold float64) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%g", query, limit, threshold)))
}

// get returns a deep copy of the cached results, or ok=false on a miss.
// An expired entry is removed and reported as a miss.
func (c *queryCache) get(key [32]byte) ([]types.RankedResult, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	if found && time.Since(entry.storedAt) < c.ttl {
		results := copyResults(entry.results)
		c.mu.RUnlock()
		return results, true
	}
	c.mu.RUnlock()

	if found {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent store may have
		// refreshed the entry.
		if entry, ok := c.entries[key]; ok && time.Since(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return nil, false
}

// put stores a deep copy of results, evicting the oldest entry if the
// cache is at capacity and the key is new.
func (c *queryCache) put(key [32]byte, results []types.RankedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{
		results:  copyResults(results),
		storedAt: time.Now(),
	}
}

// evictOldest removes the entry with the earliest insertion time. Caller
// holds the write lock.
func (c *queryCache) evictOldest() {
	var oldestKey [32]byte
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// clear empties the cache and returns the number of entries released.
func (c *queryCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[[32]byte]*cacheEntry)
	return n
}

// len reports current occupancy, expired entries included.
func (c *queryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyResults(src []types.RankedResult) []types.RankedResult {
	dst := make([]types.RankedResult, len(src))
	for i := range src {
		dst[i] = src[i].Clone()
	}
	return dst
}
