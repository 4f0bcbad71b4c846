// Package config loads and validates the service configuration from a YAML
// file with environment variable overrides. Validation enforces the
// chunking and search parameter preconditions once, at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/semdex/semdex/pkg/types"
)

// QdrantConfig contains connection details for the Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "local".
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChunkingConfig configures how documents are split into segments.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size"`
	Overlap int `yaml:"overlap"`
}

// SearchConfig holds default search parameters.
type SearchConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	ScoreThreshold   float64 `yaml:"score_threshold"`
	MaxQueryLength   int     `yaml:"max_query_length"`
	QueryCacheTTLSec int     `yaml:"query_cache_ttl_secs"`
	QueryCacheSize   int     `yaml:"query_cache_size"`
}

// CacheConfig configures the two-tier embedding cache.
type CacheConfig struct {
	// Dir holds the persistent tier database. Defaults to
	// ~/.semdex/cache.
	Dir string `yaml:"dir"`
	// MemoryEntries bounds the in-memory accelerator tier.
	MemoryEntries int `yaml:"memory_entries"`
}

// IndexingConfig configures the batch indexing pipeline.
type IndexingConfig struct {
	DocumentsPath  string `yaml:"documents_path"`
	EmbedBatchSize int    `yaml:"embed_batch_size"`
	UpsertBatch    int    `yaml:"upsert_batch_size"`
	Workers        int    `yaml:"workers"`
}

// Config is the root configuration.
type Config struct {
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Indexing IndexingConfig `yaml:"indexing"`
}

// Default returns a configuration with the stock defaults.
func Default() *Config {
	return &Config{
		Qdrant: QdrantConfig{
			URL:         "http://localhost:6333",
			Collection:  "documents",
			TimeoutSecs: 30,
		},
		Embedder: EmbedderConfig{
			Provider:    "local",
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			Dimension:   384,
			BatchSize:   32,
			TimeoutSecs: 30,
		},
		Chunking: ChunkingConfig{
			MaxSize: 1000,
			Overlap: 200,
		},
		Search: SearchConfig{
			DefaultLimit:     10,
			ScoreThreshold:   0.5,
			MaxQueryLength:   1000,
			QueryCacheTTLSec: 300,
			QueryCacheSize:   100,
		},
		Cache: CacheConfig{
			MemoryEntries: 1000,
		},
		Indexing: IndexingConfig{
			DocumentsPath:  "documents",
			EmbedBatchSize: 32,
			UpsertBatch:    100,
			Workers:        4,
		},
	}
}

// Load reads the config from path. A missing file yields the defaults;
// environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override the file without
// editing it. Only the connection-level settings are overridable.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEMDEX_QDRANT_URL"); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("SEMDEX_QDRANT_COLLECTION"); v != "" {
		cfg.Qdrant.Collection = v
	}
	if v := os.Getenv("SEMDEX_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedder.Provider = v
	}
	if v := os.Getenv("SEMDEX_DOCUMENTS_PATH"); v != "" {
		cfg.Indexing.DocumentsPath = v
	}
	if v := os.Getenv("SEMDEX_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SEMDEX_EMBEDDING_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedder.Dimension = n
		}
	}
}

// Validate enforces the parameter preconditions. All violations are
// configuration errors: fatal at startup, never per-call.
func (c *Config) Validate() error {
	if c.Chunking.MaxSize < 100 {
		return fmt.Errorf("%w: chunking max_size must be >= 100, got %d", types.ErrConfiguration, c.Chunking.MaxSize)
	}
	if c.Chunking.MaxSize > 8000 {
		return fmt.Errorf("%w: chunking max_size must be <= 8000, got %d", types.ErrConfiguration, c.Chunking.MaxSize)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("%w: chunking overlap must be in [0, max_size), got %d", types.ErrConfiguration, c.Chunking.Overlap)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive, got %d", types.ErrConfiguration, c.Embedder.Dimension)
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > 100 {
		return fmt.Errorf("%w: default_limit must be in [1, 100], got %d", types.ErrConfiguration, c.Search.DefaultLimit)
	}
	if c.Search.ScoreThreshold < 0 || c.Search.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score_threshold must be in [0, 1], got %f", types.ErrConfiguration, c.Search.ScoreThreshold)
	}
	if c.Search.MaxQueryLength <= 0 {
		return fmt.Errorf("%w: max_query_length must be positive", types.ErrConfiguration)
	}
	return nil
}

// CacheDir resolves the cache directory, defaulting to ~/.semdex/cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".semdex", "cache"), nil
}
