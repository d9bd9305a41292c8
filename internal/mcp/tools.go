package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"docsift/internal/service"
	"docsift/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Document does not exist
	ErrorCodeNotReady      = -32002 // Document has not finished processing
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleListDocuments handles the list_documents tool invocation
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docService.List(ctx)
	if err != nil {
		return nil, toMCPError(err)
	}

	items := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documentSummary(doc))
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"documents": items,
		"count":     len(items),
	})), nil
}

// handleGetDocument handles the get_document tool invocation
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["document_id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}

	doc, err := s.docService.Get(ctx, id)
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(documentSummary(doc))), nil
}

// handleSearchDocument handles the search_document tool invocation
func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["document_id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	resp, err := s.docService.Search(ctx, service.SearchRequest{
		DocumentID: id,
		Query:      query,
		MaxChunks:  getIntDefault(args, "max_chunks", 0),
	})
	if err != nil {
		return nil, toMCPError(err)
	}

	results := make([]interface{}, 0, len(resp.Chunks))
	for _, c := range resp.Chunks {
		results = append(results, map[string]interface{}{
			"chunk_index":   c.ChunkIndex,
			"page_number":   c.PageNumber,
			"score":         c.Score,
			"matched_words": c.MatchedWords,
			"content":       c.Content,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"document_id": resp.DocumentID,
		"query":       resp.Query,
		"results":     results,
	})), nil
}

func documentSummary(doc *storage.DocumentRecord) map[string]interface{} {
	summary := map[string]interface{}{
		"id":          doc.ID,
		"filename":    doc.Filename,
		"status":      string(doc.Status),
		"chunk_count": doc.ChunkCount,
		"created_at":  doc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if doc.Error != "" {
		summary["error"] = doc.Error
	}
	return summary
}

// toMCPError maps service errors to MCP error codes.
func toMCPError(err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return newMCPError(ErrorCodeInvalidParams, validationErr.Error(), map[string]interface{}{
			"param":  validationErr.Field,
			"reason": validationErr.Message,
		})
	case errors.Is(err, service.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, "document not found", nil)
	case errors.Is(err, service.ErrNotReady):
		return newMCPError(ErrorCodeNotReady, err.Error(), nil)
	default:
		return newMCPError(ErrorCodeInternalError, "internal error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func newMCPError(code int, message string, data interface{}) error {
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

func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
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
