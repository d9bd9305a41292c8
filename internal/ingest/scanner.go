package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"docsift/internal/contextutil"
	"docsift/internal/storage"
)

// ScanDir submits every supported file under dir for ingestion and returns
// the number of documents created. Hidden files and directories are skipped,
// as are files larger than maxBytes when maxBytes is positive. A file whose
// content hash matches a stored document is not ingested again.
func (p *Pipeline) ScanDir(ctx context.Context, dir string, maxBytes int64) (int, error) {
	logger := contextutil.LoggerFromContext(ctx).With("dir", dir)

	submitted := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !p.extractors.Supports(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			logger.WarnContext(ctx, "skipping oversized file", "path", path, "size_bytes", info.Size())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		hash := ContentHash(data)
		existing, err := p.docs.GetByHash(ctx, hash)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to check existing document for %s: %w", path, err)
		}
		if existing != nil {
			logger.DebugContext(ctx, "skipping unchanged file", "path", path, "document_id", existing.ID, "hash", hash)
			return nil
		}

		doc := &storage.DocumentRecord{
			Filename:    d.Name(),
			ContentType: ContentType(d.Name()),
			SizeBytes:   int64(len(data)),
			ContentHash: hash,
			Status:      storage.StatusPending,
		}
		if err := p.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to create document for %s: %w", path, err)
		}

		p.Submit(ctx, Job{DocumentID: doc.ID, Filename: doc.Filename, Data: data})
		submitted++
		return nil
	})
	if err != nil {
		return submitted, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logger.InfoContext(ctx, "inbox scan complete", "submitted", submitted)
	return submitted, nil
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ContentType guesses a MIME type from a filename's extension.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "text/plain"
}
