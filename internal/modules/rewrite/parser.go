package rewrite

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"regexp"
	"strings"
	"unicode"
)

// ParseError reports why a model response could not be decoded. Raw keeps
// the untouched response for diagnostics.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse rewrite output: %s", e.Reason)
}

// rewriteOutput is the JSON shape the format directive forces the model
// to emit.
type rewriteOutput struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Summary  string   `json:"summary"`
	BodyHTML string   `json:"body_html"`
	Keywords []string `json:"keywords"`
	Tags     []string `json:"tags"`
	Numbers  []string `json:"numbers"`
	Quotes   []string `json:"quotes"`
}

// ParseArticle decodes raw model text into a ParsedArticle. The raw text
// may be wrapped in code fences or surrounded by chatter; the first
// complete JSON object is accepted. Missing title or body is a hard
// failure, a missing slug or summary is derived from what is present.
func ParseArticle(raw string) (ParsedArticle, error) {
	var out rewriteOutput
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return ParsedArticle{}, &ParseError{Reason: err.Error(), Raw: raw}
	}

	title := strings.TrimSpace(out.Title)
	body := strings.TrimSpace(out.BodyHTML)
	if title == "" {
		return ParsedArticle{}, &ParseError{Reason: "title is empty in model response", Raw: raw}
	}
	if body == "" {
		return ParsedArticle{}, &ParseError{Reason: "body_html is empty in model response", Raw: raw}
	}

	slug := strings.TrimSpace(out.Slug)
	if slug == "" {
		slug = sanitizeSlug(title)
	} else {
		slug = sanitizeSlug(slug)
	}

	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		summary = truncateSummary(stripHTMLTags(body), 150)
	}

	return ParsedArticle{
		Title:    title,
		Slug:     slug,
		BodyHTML: body,
		Summary:  summary,
		Keywords: cleanStrings(out.Keywords),
		Tags:     cleanStrings(out.Tags),
		Numbers:  cleanStrings(out.Numbers),
		Quotes:   cleanStrings(out.Quotes),
	}, nil
}

func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no JSON object found in model response")
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sanitizeSlug(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " ", "-")

	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			sb.WriteRune(r)
		}
	}
	result := strings.Trim(sb.String(), "-")
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	if result == "" {
		// Keep parsing deterministic: the same input always yields the
		// same fallback slug.
		result = fmt.Sprintf("article-%08x", crc32.ChecksumIEEE([]byte(title)))
	}
	return result
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}

func truncateSummary(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
