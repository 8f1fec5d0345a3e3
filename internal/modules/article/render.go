package article

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// RenderMarkdown converts markdown-authored article text to HTML.
// AI-rewritten articles already store HTML and are passed through.
func RenderMarkdown(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "<") {
		return trimmed
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(trimmed), &out); err != nil {
		return template.HTMLEscapeString(trimmed)
	}
	return out.String()
}
