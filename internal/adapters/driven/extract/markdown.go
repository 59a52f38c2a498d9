package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Markdown strips markdown formatting, keeping the readable text. Chunks
// index better without heading markers, link targets and table pipes.
type Markdown struct{}

// Extract parses the file with goldmark and walks the AST collecting text.
func (e *Markdown) Extract(ctx context.Context, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.Text:
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			case *ast.FencedCodeBlock:
				writeLines(&sb, source, node.Lines())
			case *ast.CodeBlock:
				writeLines(&sb, source, node.Lines())
			}
			return ast.WalkContinue, nil
		}
		// Blank line between blocks so paragraphs stay separated
		if n.Type() == ast.TypeBlock {
			sb.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse markdown: %w", err)
	}

	return normaliseText(sb.String()), nil
}

// SupportedExtensions returns the markdown extensions.
func (e *Markdown) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func writeLines(sb *strings.Builder, source []byte, lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
}
