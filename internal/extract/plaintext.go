package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// PlainText passes UTF-8 text through unchanged.
type PlainText struct{}

// Kind implements Extractor.
func (PlainText) Kind() string { return "text" }

// Extract implements Extractor. Invalid UTF-8 sequences are replaced.
func (PlainText) Extract(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return strings.TrimPrefix(text, "\ufeff"), nil
}
