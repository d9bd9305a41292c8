package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"docsift/internal/extract"
	"docsift/internal/storage"
	storage_mocks "docsift/internal/storage/mocks"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPipeline_ScanDir(t *testing.T) {
	docs, chunks := newTestStores(t)
	pipeline := NewPipeline(docs, chunks, extract.NewRegistry(), Options{ChunkSize: 50, MaxConcurrentJobs: 2})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha beta gamma")
	writeFile(t, filepath.Join(dir, "nested", "b.md"), "# Beta\n\nSecond document.")
	writeFile(t, filepath.Join(dir, "image.png"), "not text")
	writeFile(t, filepath.Join(dir, ".hidden", "c.txt"), "hidden")
	writeFile(t, filepath.Join(dir, ".secret.txt"), "hidden")
	writeFile(t, filepath.Join(dir, "big.txt"), "this file is larger than the limit allows")

	n, err := pipeline.ScanDir(context.Background(), dir, 30)
	require.NoError(t, err)
	pipeline.Wait()
	assert.Equal(t, 2, n)

	list, err := docs.List(context.Background())
	require.NoError(t, err)
	names := map[string]storage.Status{}
	for _, d := range list {
		names[d.Filename] = d.Status
		if d.Filename == "a.txt" {
			assert.Equal(t, ContentHash([]byte("alpha beta gamma")), d.ContentHash)
		}
	}
	assert.Equal(t, map[string]storage.Status{"a.txt": storage.StatusReady, "b.md": storage.StatusReady}, names)
}

func TestPipeline_ScanDir_SkipsUnchangedFiles(t *testing.T) {
	docs, chunks := newTestStores(t)
	pipeline := NewPipeline(docs, chunks, extract.NewRegistry(), Options{MaxConcurrentJobs: 2})
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha beta gamma")

	for i := 0; i < 3; i++ {
		n, err := pipeline.ScanDir(ctx, dir, 0)
		require.NoError(t, err)
		pipeline.Wait()
		if i == 0 {
			assert.Equal(t, 1, n, "first scan ingests the file")
		} else {
			assert.Zero(t, n, "scan %d should skip the unchanged file", i+1)
		}
	}

	list, err := docs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Changed content is a new document; an identical copy under another name is not
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha beta gamma delta")
	writeFile(t, filepath.Join(dir, "copy.txt"), "alpha beta gamma")

	n, err := pipeline.ScanDir(ctx, dir, 0)
	require.NoError(t, err)
	pipeline.Wait()
	assert.Equal(t, 1, n)

	list, err = docs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPipeline_ScanDir_HashLookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	mockDocs.EXPECT().GetByHash(gomock.Any(), ContentHash([]byte("alpha"))).Return(nil, errors.New("database is locked"))

	pipeline := NewPipeline(mockDocs, mockChunks, extract.NewRegistry(), Options{})
	n, err := pipeline.ScanDir(context.Background(), dir, 0)
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestPipeline_ScanDir_MissingDir(t *testing.T) {
	docs, chunks := newTestStores(t)
	pipeline := NewPipeline(docs, chunks, extract.NewRegistry(), Options{})

	_, err := pipeline.ScanDir(context.Background(), filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
	assert.Equal(t, ContentHash([]byte("a")), ContentHash([]byte("a")))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.md":       "text/markdown",
		"b.MARKDOWN": "text/markdown",
		"c.pdf":      "application/pdf",
		"d.unknownx": "text/plain",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}
