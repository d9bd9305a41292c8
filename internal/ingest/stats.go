package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"docsift/internal/chunker"
	"docsift/internal/storage"
)

// Stats summarizes the state of the document store.
type Stats struct {
	// Documents is the number of documents per status.
	Documents map[storage.Status]int `json:"documents"`
	// TotalChunks is the number of stored chunks across all documents.
	TotalChunks int `json:"total_chunks"`
	// ChunkWords contains statistics about word counts per chunk.
	ChunkWords ChunkWordStats `json:"chunk_words"`
	// InFlight is the number of jobs submitted but not yet finished.
	InFlight int `json:"in_flight"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// ParamsVersion identifies the chunker version and chunking parameters.
	// Chunks stored under a different ParamsVersion would split differently.
	ParamsVersion string `json:"params_version"`
}

// ChunkWordStats contains statistics about word counts in chunks.
type ChunkWordStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes document and chunk statistics from the stores.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	counts, err := p.docs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	wordCounts, err := p.chunks.WordCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk word counts: %w", err)
	}

	return &Stats{
		Documents:      counts,
		TotalChunks:    len(wordCounts),
		ChunkWords:     computeWordStats(wordCounts),
		InFlight:       p.InFlight(),
		ChunkerVersion: chunker.Version,
		ParamsVersion:  paramsVersion(p.opts.ChunkSize, p.opts.ChunkOverlap),
	}, nil
}

// paramsVersion hashes the chunker version and chunking parameters.
func paramsVersion(chunkSize, overlap int) string {
	input := fmt.Sprintf("%s|chunkSize=%d|overlap=%d", chunker.Version, chunkSize, overlap)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeWordStats computes min, max, mean, and p95 from word counts.
func computeWordStats(wordCounts []int) ChunkWordStats {
	if len(wordCounts) == 0 {
		return ChunkWordStats{}
	}

	sorted := make([]int, len(wordCounts))
	copy(sorted, wordCounts)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkWordStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
