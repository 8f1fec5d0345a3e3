package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposePromptDefaultStyle(t *testing.T) {
	withDefault := ComposePrompt("", "", false)
	withUnknown := ComposePrompt("", "tabloid", false)

	assert.Equal(t, withDefault, withUnknown)
	assert.Contains(t, withDefault, "Straight news")
}

func TestComposePromptStructuredAppendsDirective(t *testing.T) {
	plain := ComposePrompt("base instructions", "news", false)
	structured := ComposePrompt("base instructions", "news", true)

	assert.NotContains(t, plain, "Output JSON Format")
	assert.Contains(t, structured, "Output JSON Format")
	assert.Contains(t, structured, `"body_html"`)
	assert.True(t, len(structured) > len(plain))
}

func TestComposePromptUsesBaseOverride(t *testing.T) {
	out := ComposePrompt("custom editor instructions", "briefing", true)

	assert.Contains(t, out, "custom editor instructions")
	assert.NotContains(t, out, "Professional regional news editor")
	assert.Contains(t, out, "Short briefing")
}

func TestComposePromptIsPure(t *testing.T) {
	a := ComposePrompt("base", "interview", true)
	b := ComposePrompt("base", "interview", true)
	assert.Equal(t, a, b)
}

func TestBuildUserPromptFencesSource(t *testing.T) {
	out := BuildUserPrompt("hello world")
	assert.Equal(t, "<<<SOURCE\nhello world\nSOURCE", out)
}

func TestStylesContainsDefault(t *testing.T) {
	assert.Contains(t, Styles(), DefaultStyle)
}
