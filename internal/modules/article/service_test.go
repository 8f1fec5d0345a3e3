package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello World"))
	assert.Equal(t, "나주-축제-소식", Slugify("나주 축제 소식"))
	assert.Equal(t, "2026-예산안", Slugify("2026 예산안!"))
	assert.NotEmpty(t, Slugify("???"))
}

func TestRenderMarkdownPassesThroughHTML(t *testing.T) {
	html := "<p>already html</p>"
	assert.Equal(t, html, RenderMarkdown(html))
}

func TestRenderMarkdownConvertsMarkdown(t *testing.T) {
	out := RenderMarkdown("# 제목\n\n본문 문단")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "본문 문단")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown("   "))
}
