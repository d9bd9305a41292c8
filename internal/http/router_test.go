package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docsift/internal/ingest"
	"docsift/internal/service"
	"docsift/internal/service/mocks"
	"docsift/internal/storage"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type emptyStats struct{}

func (emptyStats) Stats(context.Context) (*ingest.Stats, error) {
	return &ingest.Stats{Documents: map[storage.Status]int{}}, nil
}

func newTestDeps(svc service.DocumentService) *Deps {
	return &Deps{
		DocumentService: svc,
		DB:              okPinger{},
		Stats:           emptyStats{},
		MaxUploadBytes:  1024,
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(newTestDeps(mocks.NewMockDocumentService(ctrl)))

	assert.NotNil(t, router)
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockDocumentService(ctrl)
	mockService.EXPECT().List(gomock.Any()).Return([]*storage.DocumentRecord{}, nil)
	mockService.EXPECT().Get(gomock.Any(), "abc").Return(&storage.DocumentRecord{ID: "abc", Status: storage.StatusPending}, nil)
	mockService.EXPECT().Chunks(gomock.Any(), "abc").Return(nil, service.ErrNotFound)
	mockService.EXPECT().Delete(gomock.Any(), "abc").Return(nil)

	router := NewRouter(newTestDeps(mockService))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/v1/documents",
			method:     http.MethodGet,
			path:       "/api/v1/documents",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/v1/documents without multipart body",
			method:     http.MethodPost,
			path:       "/api/v1/documents",
			wantStatus: http.StatusBadRequest, // Bad request due to invalid body, but route exists
		},
		{
			name:       "GET /api/v1/documents/{id}",
			method:     http.MethodGet,
			path:       "/api/v1/documents/abc",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/v1/documents/{id}/chunks",
			method:     http.MethodGet,
			path:       "/api/v1/documents/abc/chunks",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "POST /api/v1/documents/{id}/search with invalid body",
			method:     http.MethodPost,
			path:       "/api/v1/documents/abc/search",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DELETE /api/v1/documents/{id}",
			method:     http.MethodDelete,
			path:       "/api/v1/documents/abc",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "GET /api/v1/documents/{id}/search method not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/documents/abc/search",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v2/documents",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "%s %s", tt.method, tt.path)
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(newTestDeps(mocks.NewMockDocumentService(ctrl)))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"), "router should apply CORS middleware")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
