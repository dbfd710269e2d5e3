package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

// markdownRenderer returns the lazily initialized goldmark singleton used
// for the about text.
func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithXHTML(),
			),
		)
	})
	return markdownInstance
}

// RenderMarkdown converts markdown source to HTML for embedding in a page.
func RenderMarkdown(source []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
