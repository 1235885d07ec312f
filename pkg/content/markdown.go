package content

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/actionhero/docsite/pkg/core"
)

// DefaultHighlightStyle is the chroma style used for fenced code.
const DefaultHighlightStyle = "github"

// NewMarkdown returns the markdown converter used for section bodies:
// GFM tables and lists, syntax highlighting, and raw HTML passthrough.
func NewMarkdown(style string) goldmark.Markdown {
	if style == "" {
		style = DefaultHighlightStyle
	}
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// RenderMarkdown converts src into trusted HTML.
func RenderMarkdown(md goldmark.Markdown, src []byte) (core.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return core.HTML(buf.String()), nil
}
