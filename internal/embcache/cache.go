package embcache

import (
	"fmt"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/semdex/semdex/pkg/types"
)

// DefaultMemoryEntries bounds the memory tier when no capacity is given.
const DefaultMemoryEntries = 1000

// dbFileName is the persistent tier file inside the cache directory.
const dbFileName = "embeddings.db"

// Cache is the two-tier embedding cache. Lookups check the memory tier,
// then the persistent tier (promoting a hit into memory if there is room),
// before declaring a miss. Writes go to both tiers.
type Cache struct {
	mu     sync.Mutex
	mem    *lru.Cache[string, []float32]
	memCap int
	store  *Store
}

// New opens a cache rooted at dir with a memory tier bounded at
// memoryEntries (DefaultMemoryEntries when <= 0).
func New(dir string, memoryEntries int) (*Cache, error) {
	if memoryEntries <= 0 {
		memoryEntries = DefaultMemoryEntries
	}
	mem, err := lru.New[string, []float32](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory tier: %w", err)
	}
	store, err := OpenStore(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	return &Cache{mem: mem, memCap: memoryEntries, store: store}, nil
}

// Get returns the cached vector for text, or ok=false on a miss. A hit in
// the persistent tier is promoted into the memory tier when it has spare
// capacity. The returned slice is a copy; callers may mutate it freely.
func (c *Cache) Get(text string) ([]float32, bool) {
	fp := types.Fingerprint(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.mem.Get(fp); ok {
		return copyVector(vec), true
	}

	vec, ok, err := c.store.Get(fp)
	if err != nil || !ok {
		return nil, false
	}
	c.admit(fp, vec)
	return copyVector(vec), true
}

// Put stores the vector for text in both tiers. Storing the same text
// twice is an idempotent overwrite.
func (c *Cache) Put(text string, vec []float32) error {
	fp := types.Fingerprint(text)
	stored := copyVector(vec)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.admit(fp, stored)
	return c.store.Put(fp, stored)
}

// admit adds to the memory tier only while it has spare capacity; existing
// keys are always refreshed. Full means full: no eviction to make room.
func (c *Cache) admit(fp string, vec []float32) {
	if c.mem.Contains(fp) || c.mem.Len() < c.memCap {
		c.mem.Add(fp, vec)
	}
}

// ClearMemory empties the memory tier and returns the number of entries
// released. The persistent tier is untouched.
func (c *Cache) ClearMemory() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.mem.Len()
	c.mem.Purge()
	return n
}

// MemoryLen reports the current memory tier occupancy.
func (c *Cache) MemoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mem.Len()
}

// PersistentCount reports the number of records in the persistent tier.
func (c *Cache) PersistentCount() (int64, error) {
	return c.store.Count()
}

// Close releases the persistent tier.
func (c *Cache) Close() error {
	return c.store.Close()
}

func copyVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
