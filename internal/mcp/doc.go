// Package mcp implements the Model Context Protocol (MCP) server surface.
//
// The server exposes five tools to MCP clients:
//   - search_documents: semantic search over indexed documents
//   - index_documents: run the indexing pipeline over a path
//   - delete_document: remove one source file from the index
//   - get_status: index statistics, cache occupancy, component health
//   - clear_caches: empty the query cache and the memory embedding tier
//
// MCP is JSON-RPC 2.0 over stdio, so stdout is reserved for protocol
// traffic and all logging goes to stderr.
//
// # Error Handling
//
// Tool handlers return standard JSON-RPC error responses:
//   - -32602: invalid params (missing or malformed arguments)
//   - -32603: internal error
//   - -32001: empty or invalid query
//   - -32002: indexing already in progress
//   - -32003: embedding provider or vector index unreachable
//
// # Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "semdex": {
//	      "command": "/usr/local/bin/semdex",
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
package mcp
