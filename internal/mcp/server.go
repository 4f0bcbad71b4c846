package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semdex/semdex/internal/chunker"
	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embcache"
	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/searcher"
	"github.com/semdex/semdex/internal/vectorstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "semdex"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the assembled pipeline.
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	cache    *embcache.Cache
	embedder *embedder.Service
	index    vectorstore.Index
	searcher *searcher.Searcher
	indexer  *indexer.Indexer
}

// NewServer assembles the pipeline from configuration and registers the
// MCP tools.
func NewServer(cfg *config.Config) (*Server, error) {
	cacheDir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	cache, err := embcache.New(cacheDir, cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("initialize embedding cache: %w", err)
	}

	emb, err := embedder.NewFromConfig(cfg.Embedder, cache)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	index := vectorstore.NewQdrant(cfg.Qdrant)

	ch, err := chunker.New(cfg.Chunking.MaxSize, cfg.Chunking.Overlap)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("initialize chunker: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		cfg:      cfg,
		cache:    cache,
		embedder: emb,
		index:    index,
		searcher: searcher.New(emb, index, cfg.Search),
		indexer:  indexer.New(ch, emb, index, cfg.Indexing),
	}
	s.registerTools()
	return s, nil
}

// Serve ensures the collection exists, then serves MCP over stdio until
// shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.cache.Close()
	}()

	if err := s.index.EnsureCollection(ctx, s.cfg.Embedder.Dimension); err != nil {
		return err
	}
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(indexDocumentsTool(), s.handleIndexDocuments)
	s.mcp.AddTool(deleteDocumentTool(), s.handleDeleteDocument)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(clearCachesTool(), s.handleClearCaches)
}
