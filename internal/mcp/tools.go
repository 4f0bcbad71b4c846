package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/searcher"
	"github.com/semdex/semdex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery         = -32001 // Query parameter is empty or invalid
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeBackendUnavailable = -32003 // Embedding provider or vector index unreachable
)

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 0)
	threshold := getFloatDefault(args, "score_threshold", 0)
	filters, _ := args["filters"].(map[string]interface{})
	explain := getBoolDefault(args, "explain", false)

	resp, err := s.searcher.Search(ctx, searcher.Request{
		Query:     query,
		Limit:     limit,
		Threshold: threshold,
		Filters:   filters,
	})
	if err != nil {
		return nil, searchError(err)
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		entry := map[string]interface{}{
			"segment_id":  r.SegmentID,
			"text":        r.Text,
			"score":       r.Score,
			"source_file": r.SourceFile,
		}
		if explain {
			entry["explanation"] = r.Explanation
		}
		results[i] = entry
	}

	response := map[string]interface{}{
		"results":     results,
		"total":       resp.Total,
		"cache_hit":   resp.CacheHit,
		"duration_ms": resp.Duration.Milliseconds(),
	}
	if len(resp.StageTimings) > 0 {
		timings := make(map[string]interface{}, len(resp.StageTimings))
		for stage, d := range resp.StageTimings {
			timings[stage] = d.Milliseconds()
		}
		response["stage_timings_ms"] = timings
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexDocuments handles the index_documents tool invocation
func (s *Server) handleIndexDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path := getStringDefault(args, "path", s.cfg.Indexing.DocumentsPath)
	if path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required when no documents path is configured", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	var stats *indexer.Statistics
	if info.IsDir() {
		stats, err = s.indexer.IndexPath(ctx, path)
	} else {
		stats, err = s.indexer.IndexFile(ctx, path)
	}
	if errors.Is(err, indexer.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "another indexing run is active", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"files_indexed":    stats.FilesIndexed,
		"files_failed":     stats.FilesFailed,
		"segments_created": stats.SegmentsCreated,
		"segments_indexed": stats.SegmentsIndexed,
		"success_rate":     stats.SuccessRate,
		"duration_ms":      stats.Duration.Milliseconds(),
		"stage_timings_ms": map[string]interface{}{
			"extract": stats.ExtractTime.Milliseconds(),
			"chunk":   stats.ChunkTime.Milliseconds(),
			"embed":   stats.EmbedTime.Milliseconds(),
			"upsert":  stats.UpsertTime.Milliseconds(),
		},
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteDocument handles the delete_document tool invocation
func (s *Server) handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	sourceFile, ok := args["source_file"].(string)
	if !ok || sourceFile == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "source_file parameter is required", map[string]interface{}{
			"param":  "source_file",
			"reason": "missing or empty",
		})
	}

	if err := s.indexer.DeleteDocument(ctx, sourceFile); err != nil {
		return nil, newMCPError(ErrorCodeBackendUnavailable, "delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cached results may still reference the deleted document.
	cleared := s.searcher.ClearQueryCache()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted":             true,
		"source_file":         sourceFile,
		"query_cache_cleared": cleared,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"embedder": map[string]interface{}{
			"provider":  s.embedder.ProviderName(),
			"dimension": s.embedder.Dimension(),
		},
		"caches": map[string]interface{}{
			"query_cache_entries":   s.searcher.QueryCacheLen(),
			"memory_tier_entries":   s.cache.MemoryLen(),
			"persistent_tier_error": nil,
		},
	}

	if count, err := s.cache.PersistentCount(); err == nil {
		response["caches"].(map[string]interface{})["persistent_tier_entries"] = count
	} else {
		response["caches"].(map[string]interface{})["persistent_tier_error"] = err.Error()
	}

	if err := s.index.Health(ctx); err != nil {
		response["index"] = map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	indexStatus := map[string]interface{}{"healthy": true}
	if stats, err := s.index.Stats(ctx); err == nil {
		indexStatus["collection"] = stats.Collection
		indexStatus["points_count"] = stats.PointsCount
		indexStatus["indexed_vectors_count"] = stats.IndexedCount
		indexStatus["status"] = stats.Status
		indexStatus["vector_size"] = stats.VectorSize
		indexStatus["distance"] = stats.DistanceModel
	} else {
		indexStatus["stats_error"] = err.Error()
	}
	response["index"] = indexStatus

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCaches handles the clear_caches tool invocation
func (s *Server) handleClearCaches(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queryCleared := s.searcher.ClearQueryCache()
	memoryCleared := s.cache.ClearMemory()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query_cache_cleared":  queryCleared,
		"memory_tier_cleared":  memoryCleared,
		"persistent_tier_kept": true,
	})), nil
}

// Helper functions

// searchError maps pipeline errors onto MCP error codes.
func searchError(err error) error {
	switch {
	case errors.Is(err, types.ErrQuery):
		return newMCPError(ErrorCodeEmptyQuery, "invalid query", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrEmbeddingUnavailable), errors.Is(err, types.ErrIndexUnavailable):
		return newMCPError(ErrorCodeBackendUnavailable, "search backend unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
