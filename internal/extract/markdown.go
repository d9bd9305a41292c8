package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown renders markdown documents to plain text using goldmark's AST.
// Every block (heading, paragraph, list item, code block, table row) becomes
// its own paragraph in the output.
type Markdown struct {
	parser goldmark.Markdown
}

// NewMarkdown creates a Markdown extractor with GFM tables enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Kind implements Extractor.
func (m *Markdown) Kind() string { return "markdown" }

// Extract implements Extractor.
func (m *Markdown) Extract(ctx context.Context, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", nil
	}

	doc := m.parser.Parser().Parse(text.NewReader(content))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			blocks = appendBlock(blocks, inlineText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			var sb strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(content))
			}
			blocks = appendBlock(blocks, sb.String())
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}

		// Table rows are rendered as pipe-separated cells
		if n.Kind() == east.KindTableHeader || n.Kind() == east.KindTableRow {
			var cells []string
			for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, strings.TrimSpace(inlineText(cell, content)))
			}
			blocks = appendBlock(blocks, strings.Join(cells, " | "))
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return strings.Join(blocks, "\n\n"), nil
}

// appendBlock adds a non-blank block.
func appendBlock(blocks []string, block string) []string {
	block = strings.TrimSpace(block)
	if block == "" {
		return blocks
	}
	return append(blocks, block)
}

// inlineText extracts the text content of a node and its inline children.
func inlineText(n ast.Node, content []byte) string {
	var sb strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(content))
			if v.HardLineBreak() {
				sb.WriteString("\n")
			} else if v.SoftLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.AutoLink:
			sb.Write(v.Label(content))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return sb.String()
}
