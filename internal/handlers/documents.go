package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docsift/internal/chunker"
	"docsift/internal/contextutil"
	"docsift/internal/ranker"
	"docsift/internal/service"
	"docsift/internal/storage"
)

// multipartOverhead is the allowance for multipart headers on top of the file size.
const multipartOverhead = 1 << 20

// DocumentHandler handles HTTP requests for documents and their chunks.
type DocumentHandler struct {
	docService     service.DocumentService
	maxUploadBytes int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docService service.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		maxUploadBytes: maxUploadBytes,
	}
}

// DocumentResponse is the HTTP representation of a document record.
type DocumentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	ChunkCount  int    `json:"chunk_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ListDocumentsResponse wraps the document list.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// ChunksResponse lists the stored chunks of a document.
type ChunksResponse struct {
	DocumentID string          `json:"document_id"`
	Chunks     []chunker.Chunk `json:"chunks"`
}

// SearchRequest represents the HTTP request payload for a search.
type SearchRequest struct {
	Query     string `json:"query"`
	MaxChunks int    `json:"max_chunks"`
}

// SearchResponse represents the HTTP response payload for a search.
type SearchResponse struct {
	DocumentID string               `json:"document_id"`
	Query      string               `json:"query"`
	Chunks     []ranker.ScoredChunk `json:"chunks"`
}

func toDocumentResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		Status:      string(doc.Status),
		Error:       doc.Error,
		ChunkCount:  doc.ChunkCount,
		CreatedAt:   doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   doc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Upload accepts a multipart upload in the "file" field and responds 202
// with the pending document. Processing continues in the background.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			logger.WarnContext(ctx, "upload too large", "limit", maxBytesErr.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, "Document too large")
			return
		}
		logger.WarnContext(ctx, "invalid multipart body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	doc, err := h.docService.Upload(ctx, service.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to upload document")
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusAccepted, toDocumentResponse(doc))
}

// List responds with every document, newest first.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.docService.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}

	resp := ListDocumentsResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get responds with a single document's status record.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.docService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// Chunks responds with a document's stored chunks in order.
func (h *DocumentHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	chunks, err := h.docService.Chunks(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list chunks")
		return
	}
	writeJSON(w, http.StatusOK, ChunksResponse{DocumentID: id, Chunks: chunks})
}

// Search ranks a document's chunks against the query in the request body.
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.docService.Search(ctx, service.SearchRequest{
		DocumentID: chi.URLParam(r, "id"),
		Query:      req.Query,
		MaxChunks:  req.MaxChunks,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search document")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		DocumentID: svcResp.DocumentID,
		Query:      svcResp.Query,
		Chunks:     svcResp.Chunks,
	})
}

// Delete removes a document and its chunks.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.docService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
