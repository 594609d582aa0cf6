package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	// ContentFormatBreaks turns line breaks into <br> tags and nothing else
	ContentFormatBreaks = "breaks"
	// ContentFormatMarkdown renders the body as Markdown
	ContentFormatMarkdown = "markdown"
)

// ContentRenderer converts a post body into the HTML sent to the blog
type ContentRenderer interface {
	Render(title, body string) (string, error)
}

// NewContentRenderer returns the renderer for a content_format setting
func NewContentRenderer(format string, titleHeading bool) (ContentRenderer, error) {
	switch format {
	case "", ContentFormatBreaks:
		return &breaksRenderer{titleHeading: titleHeading}, nil
	case ContentFormatMarkdown:
		return &markdownRenderer{
			titleHeading: titleHeading,
			engine:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		}, nil
	default:
		return nil, fmt.Errorf("unknown content format %q", format)
	}
}

type breaksRenderer struct {
	titleHeading bool
}

func (r *breaksRenderer) Render(title, body string) (string, error) {
	return withTitleHeading(r.titleHeading, title, strings.ReplaceAll(body, "\n", "<br>\n")), nil
}

type markdownRenderer struct {
	titleHeading bool
	engine       goldmark.Markdown
}

func (r *markdownRenderer) Render(title, body string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return withTitleHeading(r.titleHeading, title, buf.String()), nil
}

func withTitleHeading(enabled bool, title, html string) string {
	if !enabled {
		return html
	}
	return "<h1>" + title + "</h1>\n" + html
}
