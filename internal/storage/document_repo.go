package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docsift/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Create inserts a new document. An empty ID is replaced with a new UUID and
	// an empty Status with StatusPending.
	Create(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// GetByHash gets the newest document with the given content hash.
	// Returns ErrNotFound if none exists.
	GetByHash(ctx context.Context, hash string) (*DocumentRecord, error)
	// List returns all documents, newest first.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// UpdateStatus records a processing outcome for a document.
	UpdateStatus(ctx context.Context, id string, status Status, errMsg string, chunkCount int) error
	// Delete removes a document and, by cascade, its chunks.
	Delete(ctx context.Context, id string) error
	// CountByStatus returns the number of documents per status.
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db, now: time.Now}
}

// Create inserts a new document.
func (r *DocumentRepo) Create(ctx context.Context, doc *DocumentRecord) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	if !doc.Status.Valid() {
		return fmt.Errorf("invalid document status %q", doc.Status)
	}
	now := r.now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, content_type, size_bytes, content_hash, status, error, chunk_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.ContentType, doc.SizeBytes, doc.ContentHash, string(doc.Status), doc.Error, doc.ChunkCount,
		now.Format(timestampLayout), now.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, size_bytes, content_hash, status, error, chunk_count, created_at, updated_at
		 FROM documents WHERE id = ?`,
		id,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// GetByHash gets the newest document with the given content hash.
// Returns ErrNotFound if none exists.
func (r *DocumentRepo) GetByHash(ctx context.Context, hash string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, size_bytes, content_hash, status, error, chunk_count, created_at, updated_at
		 FROM documents WHERE content_hash = ? ORDER BY created_at DESC, id LIMIT 1`,
		hash,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document by hash: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first.
// Returns an empty slice if there are none (not an error).
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, content_type, size_bytes, content_hash, status, error, chunk_count, created_at, updated_at
		 FROM documents ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []*DocumentRecord{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// UpdateStatus records a processing outcome for a document.
// Returns ErrNotFound if the document does not exist.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id string, status Status, errMsg string, chunkCount int) error {
	if !status.Valid() {
		return fmt.Errorf("invalid document status %q", status)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, error = ?, chunk_count = ?, updated_at = ? WHERE id = ?",
		string(status), errMsg, chunkCount, r.now().UTC().Format(timestampLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document and its chunks.
// Returns ErrNotFound if the document does not exist.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of documents per status.
// Statuses with no documents are present with a zero count.
func (r *DocumentRepo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts := map[Status]int{
		StatusPending:    0,
		StatusProcessing: 0,
		StatusReady:      0,
		StatusFailed:     0,
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM documents GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[Status(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var status, createdAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.SizeBytes, &doc.ContentHash, &status,
		&doc.Error, &doc.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.Status = Status(status)

	var err error
	if doc.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}
