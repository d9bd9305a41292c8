package ingest

import (
	"context"
	"errors"
	"testing"

	"docsift/internal/chunker"
	"docsift/internal/extract"
	"docsift/internal/storage"
	storage_mocks "docsift/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPipeline_Stats(t *testing.T) {
	docs, chunks := newTestStores(t)
	pipeline := NewPipeline(docs, chunks, extract.NewRegistry(), Options{ChunkSize: 3, ChunkOverlap: 0})
	ctx := context.Background()

	stats, err := pipeline.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
	assert.Equal(t, ChunkWordStats{}, stats.ChunkWords)
	assert.Equal(t, chunker.Version, stats.ChunkerVersion)
	assert.Len(t, stats.ParamsVersion, 16)

	doc := createPending(t, docs, "notes.txt")
	createPending(t, docs, "waiting.txt")
	require.NoError(t, pipeline.Process(ctx, Job{DocumentID: doc.ID, Filename: doc.Filename, Data: []byte("a b c d e f g")}))

	stats, err = pipeline.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents[storage.StatusReady])
	assert.Equal(t, 1, stats.Documents[storage.StatusPending])
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, ChunkWordStats{Min: 1, Max: 3, Mean: 2.33, P95: 3}, stats.ChunkWords)
}

func TestPipeline_Stats_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	mockDocs.EXPECT().CountByStatus(gomock.Any()).Return(map[storage.Status]int{}, nil)
	mockChunks.EXPECT().WordCounts(gomock.Any()).Return(nil, errors.New("boom"))

	pipeline := NewPipeline(mockDocs, mockChunks, extract.NewRegistry(), Options{})
	_, err := pipeline.Stats(context.Background())
	assert.Error(t, err)
}

func TestParamsVersion(t *testing.T) {
	assert.Equal(t, paramsVersion(500, 50), paramsVersion(500, 50))
	assert.NotEqual(t, paramsVersion(500, 50), paramsVersion(500, 40), "overlap is part of the version")
	assert.NotEqual(t, paramsVersion(500, 50), paramsVersion(400, 50), "chunk size is part of the version")
}

func TestComputeWordStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   ChunkWordStats
	}{
		{
			name:   "empty",
			counts: nil,
			want:   ChunkWordStats{},
		},
		{
			name:   "single",
			counts: []int{7},
			want:   ChunkWordStats{Min: 7, Max: 7, Mean: 7, P95: 7},
		},
		{
			name:   "unsorted input",
			counts: []int{5, 1, 3},
			want:   ChunkWordStats{Min: 1, Max: 5, Mean: 3, P95: 5},
		},
		{
			name:   "twenty values",
			counts: []int{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
			want:   ChunkWordStats{Min: 1, Max: 20, Mean: 10.5, P95: 19},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeWordStats(tt.counts))
		})
	}
}
