package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/pkg/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:6333", cfg.Qdrant.URL)
	assert.Equal(t, "documents", cfg.Qdrant.Collection)
	assert.Equal(t, "local", cfg.Embedder.Provider)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, 1000, cfg.Chunking.MaxSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 0.5, cfg.Search.ScoreThreshold)
	assert.Equal(t, 300, cfg.Search.QueryCacheTTLSec)
	assert.Equal(t, 100, cfg.Search.QueryCacheSize)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Chunking, cfg.Chunking)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
qdrant:
  url: http://qdrant.internal:6333
  collection: articles
chunking:
  max_size: 2000
  overlap: 400
search:
  default_limit: 20
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant.internal:6333", cfg.Qdrant.URL)
	assert.Equal(t, "articles", cfg.Qdrant.Collection)
	assert.Equal(t, 2000, cfg.Chunking.MaxSize)
	assert.Equal(t, 400, cfg.Chunking.Overlap)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	// Unset fields keep their defaults.
	assert.Equal(t, 0.5, cfg.Search.ScoreThreshold)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEMDEX_QDRANT_URL", "http://env:6333")
	t.Setenv("SEMDEX_QDRANT_COLLECTION", "env-collection")
	t.Setenv("SEMDEX_EMBEDDING_PROVIDER", "openai")
	t.Setenv("SEMDEX_EMBEDDING_DIMENSION", "1536")
	t.Setenv("SEMDEX_CACHE_DIR", "/var/cache/semdex")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env:6333", cfg.Qdrant.URL)
	assert.Equal(t, "env-collection", cfg.Qdrant.Collection)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, 1536, cfg.Embedder.Dimension)

	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/semdex", dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max_size too small", func(c *Config) { c.Chunking.MaxSize = 99 }},
		{"max_size too large", func(c *Config) { c.Chunking.MaxSize = 8001 }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"overlap >= max_size", func(c *Config) { c.Chunking.Overlap = 1000 }},
		{"zero dimension", func(c *Config) { c.Embedder.Dimension = 0 }},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"limit over cap", func(c *Config) { c.Search.DefaultLimit = 101 }},
		{"threshold below zero", func(c *Config) { c.Search.ScoreThreshold = -0.1 }},
		{"threshold above one", func(c *Config) { c.Search.ScoreThreshold = 1.1 }},
		{"zero query length", func(c *Config) { c.Search.MaxQueryLength = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrConfiguration)
		})
	}
}

func TestCacheDir_Default(t *testing.T) {
	cfg := Default()
	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Contains(t, dir, filepath.Join(".semdex", "cache"))
}
