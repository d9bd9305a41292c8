package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingester.go -package=mocks docsift/internal/service Ingester
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks -mock_names=DocumentService=MockDocumentService docsift/internal/service DocumentService

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docsift/internal/chunker"
	"docsift/internal/contextutil"
	"docsift/internal/ingest"
	"docsift/internal/ranker"
	"docsift/internal/storage"
)

const (
	// MaxQueryLength is the longest accepted search query, in runes.
	MaxQueryLength = 1000
	// MaxSearchChunks is the largest accepted max_chunks value.
	MaxSearchChunks = 20
)

// Ingester schedules background processing of uploaded documents.
// This interface is defined from the service layer's perspective (consumer-first).
type Ingester interface {
	// Submit queues a job and returns immediately.
	Submit(ctx context.Context, job ingest.Job)
	// Supports reports whether a file name has a known document type.
	Supports(filename string) bool
}

// UploadRequest represents a document upload in the domain layer.
type UploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SearchRequest represents a search within one document.
type SearchRequest struct {
	DocumentID string
	Query      string
	MaxChunks  int // 0 selects the configured default
}

// SearchResponse holds the ranked chunks of a search.
type SearchResponse struct {
	DocumentID string
	Query      string
	Chunks     []ranker.ScoredChunk
}

// DocumentService manages documents and searches their chunks.
type DocumentService interface {
	// Upload records a new document and schedules it for processing.
	Upload(ctx context.Context, req UploadRequest) (*storage.DocumentRecord, error)
	// Get returns a document's record.
	Get(ctx context.Context, id string) (*storage.DocumentRecord, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]*storage.DocumentRecord, error)
	// Chunks returns the stored chunks of a document in order.
	Chunks(ctx context.Context, id string) ([]chunker.Chunk, error)
	// Search ranks a ready document's chunks against a query.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	// Delete removes a document and its chunks.
	Delete(ctx context.Context, id string) error
}

// Options configures a DocumentService.
type Options struct {
	MaxChunks      int   // Default number of search results
	MaxUploadBytes int64 // Largest accepted upload; 0 means unlimited
}

// documentService implements DocumentService.
type documentService struct {
	docs     storage.DocumentStore
	chunks   storage.ChunkStore
	ingester Ingester
	opts     Options
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs storage.DocumentStore, chunks storage.ChunkStore, ingester Ingester, opts Options) DocumentService {
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = ranker.DefaultMaxChunks
	}
	return &documentService{
		docs:     docs,
		chunks:   chunks,
		ingester: ingester,
		opts:     opts,
	}
}

// Upload validates the upload, stores a pending record and submits the
// document for processing. The returned record is still pending.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (*storage.DocumentRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	filename := filepath.Base(strings.TrimSpace(req.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	if !s.ingester.Supports(filename) {
		logger.WarnContext(ctx, "unsupported document type", "filename", filename)
		return nil, &ValidationError{Field: "filename", Message: fmt.Sprintf("unsupported document type %q", filepath.Ext(filename))}
	}
	if len(req.Data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "cannot be empty"}
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(req.Data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%d bytes exceeds limit of %d: %w", len(req.Data), s.opts.MaxUploadBytes, ErrTooLarge)
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = ingest.ContentType(filename)
	}

	doc := &storage.DocumentRecord{
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(req.Data)),
		ContentHash: ingest.ContentHash(req.Data),
		Status:      storage.StatusPending,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		logger.ErrorContext(ctx, "failed to create document", "error", err)
		return nil, WrapError(err, "failed to create document")
	}

	s.ingester.Submit(ctx, ingest.Job{DocumentID: doc.ID, Filename: doc.Filename, Data: req.Data})

	logger.InfoContext(ctx, "document accepted", "document_id", doc.ID, "filename", filename, "size_bytes", doc.SizeBytes)
	return doc, nil
}

// Get returns a document's record.
func (s *documentService) Get(ctx context.Context, id string) (*storage.DocumentRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, id)
	}
	return doc, nil
}

// List returns every document, newest first.
func (s *documentService) List(ctx context.Context) ([]*storage.DocumentRecord, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return docs, nil
}

// Chunks returns the stored chunks of a document. Documents that are not
// ready have no chunks.
func (s *documentService) Chunks(ctx context.Context, id string) ([]chunker.Chunk, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	chunks, err := s.chunks.ListByDocument(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to list chunks")
	}
	return chunks, nil
}

// Search ranks the chunks of a ready document against the query.
func (s *documentService) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.DocumentID) == "" {
		return SearchResponse{}, &ValidationError{Field: "document_id", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Query) == "" {
		return SearchResponse{}, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(req.Query) > MaxQueryLength {
		return SearchResponse{}, &ValidationError{Field: "query", Message: fmt.Sprintf("must be at most %d characters", MaxQueryLength)}
	}
	if req.MaxChunks < 0 || req.MaxChunks > MaxSearchChunks {
		return SearchResponse{}, &ValidationError{Field: "max_chunks", Message: fmt.Sprintf("must be between 1 and %d", MaxSearchChunks)}
	}

	maxChunks := req.MaxChunks
	if maxChunks == 0 {
		maxChunks = s.opts.MaxChunks
	}

	doc, err := s.docs.GetByID(ctx, req.DocumentID)
	if err != nil {
		return SearchResponse{}, translateStoreError(err, req.DocumentID)
	}
	if doc.Status != storage.StatusReady {
		return SearchResponse{}, fmt.Errorf("document %s is %s: %w", doc.ID, doc.Status, ErrNotReady)
	}

	chunks, err := s.chunks.ListByDocument(ctx, doc.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load chunks", "document_id", doc.ID, "error", err)
		return SearchResponse{}, WrapError(err, "failed to load chunks")
	}

	ranked := ranker.Rank(chunks, req.Query, maxChunks)

	logger.InfoContext(ctx, "search completed",
		"document_id", doc.ID,
		"chunks", len(chunks),
		"results", len(ranked),
		"query_length", len(req.Query),
	)
	return SearchResponse{
		DocumentID: doc.ID,
		Query:      req.Query,
		Chunks:     ranked,
	}, nil
}

// Delete removes a document and its chunks.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return translateStoreError(err, id)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}

// translateStoreError maps storage.ErrNotFound to ErrNotFound.
func translateStoreError(err error, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return WrapError(err, "failed to load document")
}
