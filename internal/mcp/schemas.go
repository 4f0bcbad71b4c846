package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchDocumentsTool returns the tool definition for search_documents
func searchDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed documents with a natural language query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"score_threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity score (0.0-1.0)",
					"default":     0.5,
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Metadata conditions. A plain value matches exactly; {\"range\": {\"gte\": x, \"lte\": y}} matches numerically. Filtered queries bypass the result cache.",
				},
				"explain": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include per-result score explanations",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// indexDocumentsTool returns the tool definition for index_documents
func indexDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_documents",
		Description: "Index every supported document (.txt, .md, .html) under a directory, or a single file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a document directory or a single document file. Defaults to the configured documents path.",
				},
			},
		},
	}
}

// deleteDocumentTool returns the tool definition for delete_document
func deleteDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_document",
		Description: "Remove every indexed segment of one source file from the vector index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_file": map[string]interface{}{
					"type":        "string",
					"description": "Source file path as stored in the index",
				},
			},
			Required: []string{"source_file"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report vector index statistics, cache occupancy, and component health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCachesTool returns the tool definition for clear_caches
func clearCachesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_caches",
		Description: "Empty the query result cache and the in-memory embedding tier. The persistent embedding cache is untouched.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
