package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"docsift/internal/service"
)

// listDocumentsTool returns the tool definition for list_documents
func listDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded documents with their processing status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getDocumentTool returns the tool definition for get_document
func getDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_document",
		Description: "Get the processing status and chunk count of one document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document ID returned by list_documents or the upload API",
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// searchDocumentTool returns the tool definition for search_document
func searchDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_document",
		Description: "Return the passages of a processed document that best match a keyword query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document ID to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Keywords to look for",
				},
				"max_chunks": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of passages to return",
					"minimum":     1,
					"maximum":     service.MaxSearchChunks,
				},
			},
			Required: []string{"document_id", "query"},
		},
	}
}
