package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/chunker"
)

func sampleChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Content: "first chunk text", ChunkIndex: 0},
		{Content: "second chunk", ChunkIndex: 1},
		{Content: "third", ChunkIndex: 2},
	}
}

func createDocument(t *testing.T, repo *DocumentRepo) *DocumentRecord {
	t.Helper()

	doc := &DocumentRecord{Filename: "doc.txt", ContentType: "text"}
	require.NoError(t, repo.Create(context.Background(), doc))
	return doc
}

func TestChunkRepo_ReplaceForDocument(t *testing.T) {
	db := newTestDB(t)
	repo := NewChunkRepo(db)
	doc := createDocument(t, NewDocumentRepo(db))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForDocument(ctx, doc.ID, sampleChunks()))

	got, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleChunks(), got)

	// Re-chunking supersedes the previous set
	replacement := []chunker.Chunk{{Content: "only chunk", ChunkIndex: 0}}
	require.NoError(t, repo.ReplaceForDocument(ctx, doc.ID, replacement))

	got, err = repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestChunkRepo_ReplaceForDocument_RollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewChunkRepo(db)
	doc := createDocument(t, NewDocumentRepo(db))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForDocument(ctx, doc.ID, sampleChunks()))

	// Duplicate chunk_index violates the primary key on the second insert
	bad := []chunker.Chunk{
		{Content: "a", ChunkIndex: 0},
		{Content: "b", ChunkIndex: 0},
	}
	assert.Error(t, repo.ReplaceForDocument(ctx, doc.ID, bad))

	got, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleChunks(), got, "failed replace should leave previous chunks intact")
}

func TestChunkRepo_ReplaceForDocument_UnknownDocument(t *testing.T) {
	repo := NewChunkRepo(newTestDB(t))

	err := repo.ReplaceForDocument(context.Background(), "missing", sampleChunks())
	assert.Error(t, err, "foreign key should reject chunks of an unknown document")
}

func TestChunkRepo_ListByDocument_Empty(t *testing.T) {
	repo := NewChunkRepo(newTestDB(t))

	got, err := repo.ListByDocument(context.Background(), "missing")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestChunkRepo_CountsAndWordCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewChunkRepo(db)
	doc := createDocument(t, NewDocumentRepo(db))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForDocument(ctx, doc.ID, sampleChunks()))

	count, err := repo.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	words, err := repo.WordCounts(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 2, 1}, words)
}
