package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docsift/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docsift/internal/chunker"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceForDocument atomically replaces every chunk of a document.
	// Either all chunks are stored or none are.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []chunker.Chunk) error
	// ListByDocument returns the chunks of a document ordered by chunk_index.
	ListByDocument(ctx context.Context, documentID string) ([]chunker.Chunk, error)
	// CountByDocument returns the number of stored chunks for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)
	// WordCounts returns the word count of every stored chunk.
	WordCounts(ctx context.Context) ([]int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForDocument deletes the existing chunks of a document and inserts
// chunks verbatim, including ChunkIndex and PageNumber, in one transaction.
func (r *ChunkRepo) ReplaceForDocument(ctx context.Context, documentID string, chunks []chunker.Chunk) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (document_id, chunk_index, page_number, content, word_count) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range chunks {
		if _, err = stmt.ExecContext(ctx, documentID, c.ChunkIndex, c.PageNumber, c.Content, len(strings.Fields(c.Content))); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// ListByDocument returns the chunks of a document ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]chunker.Chunk, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT chunk_index, page_number, content FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []chunker.Chunk{}
	for rows.Next() {
		var c chunker.Chunk
		if err := rows.Scan(&c.ChunkIndex, &c.PageNumber, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// CountByDocument returns the number of stored chunks for a document.
func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// WordCounts returns the word count of every stored chunk.
func (r *ChunkRepo) WordCounts(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT word_count FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk word counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan word count: %w", err)
		}
		counts = append(counts, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}
