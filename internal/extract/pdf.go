package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the text layer of a PDF document.
type PDF struct{}

// Kind implements Extractor.
func (PDF) Kind() string { return "pdf" }

// Extract implements Extractor. The document is buffered in memory because
// the PDF reader needs random access.
func (PDF) Extract(ctx context.Context, r io.Reader) (text string, err error) {
	// The reader panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("failed to parse pdf: %v", rec)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}
	return buf.String(), nil
}
