package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"docsift/internal/chunker"
	"docsift/internal/ranker"
	"docsift/internal/service"
	"docsift/internal/service/mocks"
	"docsift/internal/storage"
)

func newRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPCode(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewServer(mocks.NewMockDocumentService(ctrl))

	// stdin stays open so only ctx can end the loop
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serve(ctx, in, io.Discard)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "serve did not return after cancel")
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewServer(mocks.NewMockDocumentService(ctrl))

	require.NotNil(t, s.mcp)

	names := []string{listDocumentsTool().Name, getDocumentTool().Name, searchDocumentTool().Name}
	assert.Equal(t, []string{"list_documents", "get_document", "search_document"}, names)
	assert.Equal(t, []string{"document_id", "query"}, searchDocumentTool().InputSchema.Required)
}

func TestHandleListDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDocumentService(ctrl)
	s := NewServer(svc)

	svc.EXPECT().List(gomock.Any()).Return([]*storage.DocumentRecord{
		{ID: "a", Filename: "a.txt", Status: storage.StatusReady, ChunkCount: 2, CreatedAt: time.Unix(0, 0)},
		{ID: "b", Filename: "b.pdf", Status: storage.StatusFailed, Error: "no extractable text", CreatedAt: time.Unix(0, 0)},
	}, nil)

	result, err := s.handleListDocuments(context.Background(), newRequest("list_documents", nil))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, float64(2), out["count"])
	docs := out["documents"].([]interface{})
	second := docs[1].(map[string]interface{})
	assert.Equal(t, "failed", second["status"])
	assert.Equal(t, "no extractable text", second["error"])
}

func TestHandleGetDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDocumentService(ctrl)
	s := NewServer(svc)

	svc.EXPECT().Get(gomock.Any(), "a").Return(&storage.DocumentRecord{ID: "a", Status: storage.StatusProcessing}, nil)
	svc.EXPECT().Get(gomock.Any(), "zzz").Return(nil, fmt.Errorf("document zzz: %w", service.ErrNotFound))

	result, err := s.handleGetDocument(context.Background(), newRequest("get_document", map[string]interface{}{"document_id": "a"}))
	require.NoError(t, err)
	assert.Equal(t, "processing", resultJSON(t, result)["status"])

	_, err = s.handleGetDocument(context.Background(), newRequest("get_document", map[string]interface{}{"document_id": "zzz"}))
	requireMCPCode(t, err, ErrorCodeNotFound)

	_, err = s.handleGetDocument(context.Background(), newRequest("get_document", map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestHandleSearchDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDocumentService(ctrl)
	s := NewServer(svc)

	svc.EXPECT().
		Search(gomock.Any(), service.SearchRequest{DocumentID: "a", Query: "install", MaxChunks: 2}).
		Return(service.SearchResponse{
			DocumentID: "a",
			Query:      "install",
			Chunks: []ranker.ScoredChunk{
				{Chunk: chunker.Chunk{Content: "install steps", ChunkIndex: 4}, Score: 2.5, MatchedWords: 1},
			},
		}, nil)

	result, err := s.handleSearchDocument(context.Background(), newRequest("search_document", map[string]interface{}{
		"document_id": "a",
		"query":       "install",
		"max_chunks":  float64(2), // JSON numbers decode as float64
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	results := out["results"].([]interface{})
	require.Len(t, results, 1)
	first := results[0].(map[string]interface{})
	assert.Equal(t, float64(4), first["chunk_index"])
	assert.Equal(t, 2.5, first["score"])
	assert.Equal(t, "install steps", first["content"])
}

func TestHandleSearchDocument_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		mockSetup func(*mocks.MockDocumentService)
		wantCode  int
	}{
		{
			name:      "missing document id",
			args:      map[string]interface{}{"query": "x"},
			mockSetup: func(*mocks.MockDocumentService) {},
			wantCode:  ErrorCodeInvalidParams,
		},
		{
			name:      "empty query",
			args:      map[string]interface{}{"document_id": "a", "query": ""},
			mockSetup: func(*mocks.MockDocumentService) {},
			wantCode:  ErrorCodeEmptyQuery,
		},
		{
			name: "not ready",
			args: map[string]interface{}{"document_id": "a", "query": "install"},
			mockSetup: func(m *mocks.MockDocumentService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(service.SearchResponse{}, service.ErrNotReady)
			},
			wantCode: ErrorCodeNotReady,
		},
		{
			name: "validation",
			args: map[string]interface{}{"document_id": "a", "query": "install", "max_chunks": float64(99)},
			mockSetup: func(m *mocks.MockDocumentService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).
					Return(service.SearchResponse{}, &service.ValidationError{Field: "max_chunks", Message: "must be between 1 and 20"})
			},
			wantCode: ErrorCodeInvalidParams,
		},
		{
			name: "internal",
			args: map[string]interface{}{"document_id": "a", "query": "install"},
			mockSetup: func(m *mocks.MockDocumentService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(service.SearchResponse{}, errors.New("disk I/O error"))
			},
			wantCode: ErrorCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockDocumentService(ctrl)
			tt.mockSetup(svc)
			s := NewServer(svc)

			_, err := s.handleSearchDocument(context.Background(), newRequest("search_document", tt.args))
			requireMCPCode(t, err, tt.wantCode)
		})
	}
}

func TestHandleSearchDocument_InvalidArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewServer(mocks.NewMockDocumentService(ctrl))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = "not an object"

	_, err := s.handleSearchDocument(context.Background(), req)
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{"f": float64(3), "i": 4, "s": "5"}
	assert.Equal(t, 3, getIntDefault(args, "f", 0))
	assert.Equal(t, 4, getIntDefault(args, "i", 0))
	assert.Equal(t, 7, getIntDefault(args, "s", 7))
	assert.Equal(t, 7, getIntDefault(args, "missing", 7))
}
