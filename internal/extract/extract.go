package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedType is returned when no extractor handles a file.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrEmptyText is returned when extraction succeeded but produced no text.
	ErrEmptyText = errors.New("no extractable text")
)

// Extractor turns the bytes of a source document into plain text.
// Paragraphs in the returned text are separated by blank lines.
type Extractor interface {
	// Kind is a short stable name for the handled format (e.g. "pdf").
	Kind() string
	// Extract reads the whole document from r and returns its text.
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the built-in extractors registered.
func NewRegistry() *Registry {
	reg := &Registry{byExt: make(map[string]Extractor)}
	reg.Register(PlainText{}, ".txt", ".text", ".log", ".csv")
	reg.Register(NewMarkdown(), ".md", ".markdown")
	reg.Register(PDF{}, ".pdf")
	return reg
}

// Register associates ex with each extension. Extensions are case-insensitive
// and may omit the leading dot.
func (r *Registry) Register(ex Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[normalizeExt(ext)] = ex
	}
}

// ForFilename returns the extractor for the file's extension.
func (r *Registry) ForFilename(name string) (Extractor, error) {
	ext := normalizeExt(filepath.Ext(name))
	if ex, ok := r.byExt[ext]; ok {
		return ex, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

// Supports reports whether a file name has a registered extension.
func (r *Registry) Supports(name string) bool {
	_, err := r.ForFilename(name)
	return err == nil
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Text runs ex over r and rejects whitespace-only results with ErrEmptyText.
func Text(ctx context.Context, ex Extractor, r io.Reader) (string, error) {
	text, err := ex.Extract(ctx, r)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s text: %w", ex.Kind(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
