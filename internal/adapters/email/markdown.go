package email

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer converts markdown to HTML. Raw HTML in the source is escaped
// because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts markdown source to an HTML fragment.
// PRE: none
// POST: returns HTML with any raw HTML in src omitted
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MarkdownHTML renders src for display, falling back to escaped text when
// rendering fails.
// POST: returns "" for blank src
func MarkdownHTML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	out, err := RenderMarkdown(src)
	if err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return out
}
