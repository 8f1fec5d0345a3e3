package rewrite

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `{
	"title": "나주 대파 생산량 증가",
	"slug": "naju-scallion-harvest",
	"summary": "나주시의 대파 생산량이 크게 늘었다.",
	"body_html": "<p>나주시는 올해 대파 생산량이 1200톤을 기록했다고 밝혔다.</p>",
	"keywords": ["나주", "대파"],
	"tags": ["농업"],
	"numbers": ["1200"],
	"quotes": []
}`

func TestParseArticle(t *testing.T) {
	parsed, err := ParseArticle(sampleOutput)
	require.NoError(t, err)

	assert.Equal(t, "나주 대파 생산량 증가", parsed.Title)
	assert.Equal(t, "naju-scallion-harvest", parsed.Slug)
	assert.Equal(t, []string{"1200"}, parsed.Numbers)
	assert.NotNil(t, parsed.Quotes)
	assert.Empty(t, parsed.Quotes)
}

func TestParseArticleStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + sampleOutput + "\n```"
	parsed, err := ParseArticle(fenced)
	require.NoError(t, err)
	assert.Equal(t, "naju-scallion-harvest", parsed.Slug)
}

func TestParseArticleExtractsEmbeddedObject(t *testing.T) {
	chatty := "Sure, here is the article:\n" + sampleOutput + "\nLet me know if you need changes."
	parsed, err := ParseArticle(chatty)
	require.NoError(t, err)
	assert.Equal(t, "나주 대파 생산량 증가", parsed.Title)
}

func TestParseArticleIdempotent(t *testing.T) {
	first, err := ParseArticle(sampleOutput)
	require.NoError(t, err)
	second, err := ParseArticle(sampleOutput)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseArticleMissingFormatBlock(t *testing.T) {
	raw := "I could not produce the requested format, sorry."
	_, err := ParseArticle(raw)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, raw, pe.Raw)
	assert.NotEmpty(t, pe.Reason)
}

func TestParseArticleMissingRequiredFields(t *testing.T) {
	missingTitle := `{"title": "", "body_html": "<p>x</p>"}`
	_, err := ParseArticle(missingTitle)
	require.Error(t, err)

	missingBody := `{"title": "headline", "body_html": "  "}`
	_, err = ParseArticle(missingBody)
	require.Error(t, err)
}

func TestParseArticleDerivesSlugAndSummary(t *testing.T) {
	raw, err := json.Marshal(map[string]interface{}{
		"title":     "Breaking News Today",
		"body_html": "<p>Something happened in the region this morning.</p>",
	})
	require.NoError(t, err)

	parsed, perr := ParseArticle(string(raw))
	require.NoError(t, perr)
	assert.Equal(t, "breaking-news-today", parsed.Slug)
	assert.Equal(t, "Something happened in the region this morning.", parsed.Summary)
	assert.NotNil(t, parsed.Keywords)
	assert.NotNil(t, parsed.Tags)
}

func TestSanitizeSlugKeepsNonLatinLetters(t *testing.T) {
	assert.Equal(t, "나주-대파-생산량", sanitizeSlug("나주 대파 생산량"))
	assert.Equal(t, "mixed-제목-2024", sanitizeSlug("Mixed 제목 (2024)"))
}

func TestSanitizeSlugFallbackIsDeterministic(t *testing.T) {
	first := sanitizeSlug("!!! ???")
	second := sanitizeSlug("!!! ???")
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "article-"))
	assert.NotEqual(t, first, sanitizeSlug("%%%"))
}

func TestParseArticleIdempotentWithSymbolOnlyTitle(t *testing.T) {
	raw := `{"title": "!!!", "slug": "", "body_html": "<p>x</p>"}`
	first, err := ParseArticle(raw)
	require.NoError(t, err)
	second, err := ParseArticle(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
