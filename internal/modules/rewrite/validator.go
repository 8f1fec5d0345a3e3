package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Validate cross-checks a parsed rewrite against the source text it was
// generated from. Every number and quote the model claims to have
// preserved must actually occur in the source; each miss produces a
// warning, and the total miss count sets the grade.
func Validate(sourceText string, parsed ParsedArticle) ValidationResult {
	var warnings []string

	sourceNumbers := extractNumbers(sourceText)
	numbersOK := true
	for _, n := range parsed.Numbers {
		if !numberInSource(n, sourceNumbers) {
			numbersOK = false
			warnings = append(warnings, fmt.Sprintf("number %q not found in source", n))
		}
	}

	normalizedSource := normalizeWhitespace(stripQuoteMarks(sourceText))
	quotesOK := true
	for _, q := range parsed.Quotes {
		if !quoteInSource(q, normalizedSource) {
			quotesOK = false
			warnings = append(warnings, fmt.Sprintf("quote %q not found in source", q))
		}
	}

	return ValidationResult{
		Grade:     gradeForMismatches(len(warnings)),
		Warnings:  warnings,
		NumbersOK: numbersOK,
		QuotesOK:  quotesOK,
	}
}

// gradeForMismatches maps a mismatch count to the ordinal grade. More
// mismatches never yield a better grade.
func gradeForMismatches(count int) Grade {
	switch {
	case count == 0:
		return GradeA
	case count == 1:
		return GradeB
	case count <= 3:
		return GradeC
	default:
		return GradeD
	}
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// extractNumbers collects every numeral in the text with separators
// stripped, so "1,200" and "1200" compare equal.
func extractNumbers(text string) map[string]struct{} {
	found := map[string]struct{}{}
	for _, m := range numberPattern.FindAllString(text, -1) {
		found[normalizeNumber(m)] = struct{}{}
	}
	return found
}

func normalizeNumber(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	s = strings.TrimSuffix(s, ".")
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func numberInSource(claim string, sourceNumbers map[string]struct{}) bool {
	matches := numberPattern.FindAllString(claim, -1)
	if len(matches) == 0 {
		// No digits to verify; treat as vacuously present.
		return true
	}
	for _, m := range matches {
		if _, ok := sourceNumbers[normalizeNumber(m)]; !ok {
			return false
		}
	}
	return true
}

func quoteInSource(quote, normalizedSource string) bool {
	cleaned := normalizeWhitespace(stripQuoteMarks(quote))
	if cleaned == "" {
		return true
	}
	return strings.Contains(normalizedSource, cleaned)
}

var quoteMarkReplacer = strings.NewReplacer(
	`"`, "", "'", "", "“", "", "”", "", "‘", "", "’", "",
	"「", "", "」", "", "『", "", "』", "",
)

func stripQuoteMarks(s string) string {
	return quoteMarkReplacer.Replace(s)
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
