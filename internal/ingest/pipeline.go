package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"docsift/internal/chunker"
	"docsift/internal/contextutil"
	"docsift/internal/extract"
	"docsift/internal/storage"
)

// ErrNoChunks is recorded when extracted text produced no chunks.
var ErrNoChunks = errors.New("document produced no chunks")

// Job is one document to extract, chunk and persist.
type Job struct {
	DocumentID string
	Filename   string
	Data       []byte
}

// Options configures a Pipeline.
type Options struct {
	ChunkSize         int // Words per chunk
	ChunkOverlap      int // Words shared by adjacent chunks
	MaxConcurrentJobs int // Jobs processed at once; further jobs wait
}

// Pipeline turns uploaded documents into persisted chunk sets.
// Processing runs in the background; the outcome is recorded on the
// document's status rather than returned to the submitter.
type Pipeline struct {
	docs       storage.DocumentStore
	chunks     storage.ChunkStore
	extractors *extract.Registry
	opts       Options
	sem        *semaphore.Weighted
	wg         sync.WaitGroup
	inFlight   atomic.Int64
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	extractors *extract.Registry,
	opts Options,
) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 1
	}
	return &Pipeline{
		docs:       docs,
		chunks:     chunks,
		extractors: extractors,
		opts:       opts,
		sem:        semaphore.NewWeighted(int64(opts.MaxConcurrentJobs)),
	}
}

// Supports reports whether filename has an extractor.
func (p *Pipeline) Supports(filename string) bool {
	return p.extractors.Supports(filename)
}

// Submit schedules job for background processing and returns immediately.
// The job outlives ctx's cancellation but keeps its values (e.g. the logger).
func (p *Pipeline) Submit(ctx context.Context, job Job) {
	jobCtx := context.WithoutCancel(ctx)
	logger := contextutil.LoggerFromContext(jobCtx)

	p.wg.Add(1)
	p.inFlight.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)

		if err := p.sem.Acquire(jobCtx, 1); err != nil {
			logger.ErrorContext(jobCtx, "failed to acquire ingest slot", "document_id", job.DocumentID, "error", err)
			return
		}
		defer p.sem.Release(1)

		if err := p.Process(jobCtx, job); err != nil {
			logger.ErrorContext(jobCtx, "document processing failed", "document_id", job.DocumentID, "error", err)
		}
	}()
}

// Wait blocks until every submitted job has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// InFlight returns the number of submitted jobs that have not finished.
func (p *Pipeline) InFlight() int {
	return int(p.inFlight.Load())
}

// Process runs one job synchronously: extract text, chunk it and persist the
// chunks, then mark the document ready. Any failure marks the document failed
// with the error text; no chunks are kept for a failed document.
func (p *Pipeline) Process(ctx context.Context, job Job) error {
	logger := contextutil.LoggerFromContext(ctx).With("document_id", job.DocumentID, "filename", job.Filename)

	if err := p.docs.UpdateStatus(ctx, job.DocumentID, storage.StatusProcessing, "", 0); err != nil {
		err = fmt.Errorf("failed to mark document processing: %w", err)
		p.fail(ctx, logger, job.DocumentID, err)
		return err
	}

	chunks, err := p.prepare(ctx, job)
	if err != nil {
		p.fail(ctx, logger, job.DocumentID, err)
		return err
	}

	if err := p.chunks.ReplaceForDocument(ctx, job.DocumentID, chunks); err != nil {
		err = fmt.Errorf("failed to store chunks: %w", err)
		p.fail(ctx, logger, job.DocumentID, err)
		return err
	}

	if err := p.docs.UpdateStatus(ctx, job.DocumentID, storage.StatusReady, "", len(chunks)); err != nil {
		err = fmt.Errorf("failed to mark document ready: %w", err)
		if clearErr := p.chunks.ReplaceForDocument(ctx, job.DocumentID, nil); clearErr != nil {
			logger.WarnContext(ctx, "failed to clear chunks of failed document", "error", clearErr)
		}
		p.fail(ctx, logger, job.DocumentID, err)
		return err
	}

	logger.InfoContext(ctx, "document processed", "chunks", len(chunks), "bytes", len(job.Data))
	return nil
}

// prepare extracts and chunks the job's document.
func (p *Pipeline) prepare(ctx context.Context, job Job) ([]chunker.Chunk, error) {
	ex, err := p.extractors.ForFilename(job.Filename)
	if err != nil {
		return nil, err
	}

	text, err := extract.Text(ctx, ex, bytes.NewReader(job.Data))
	if err != nil {
		return nil, err
	}

	chunks := chunker.Split(text, p.opts.ChunkSize, p.opts.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	return chunks, nil
}

// fail records cause on the document. A failure to record it is only logged.
func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, documentID string, cause error) {
	logger.WarnContext(ctx, "marking document failed", "error", cause)
	if err := p.docs.UpdateStatus(ctx, documentID, storage.StatusFailed, cause.Error(), 0); err != nil {
		logger.ErrorContext(ctx, "failed to mark document failed", "error", err)
	}
}
