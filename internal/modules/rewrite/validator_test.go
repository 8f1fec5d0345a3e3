package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNumberPresentInSource(t *testing.T) {
	source := "나주시는 올해 대파 생산량이 1200톤을 기록했다"
	parsed := ParsedArticle{Numbers: []string{"1200"}}

	result := Validate(source, parsed)

	assert.Equal(t, GradeA, result.Grade)
	assert.True(t, result.NumbersOK)
	assert.Empty(t, result.Warnings)
}

func TestValidateNumberMissingFromSource(t *testing.T) {
	source := "나주시는 올해 대파 생산량이 1200톤을 기록했다"
	parsed := ParsedArticle{Numbers: []string{"5000"}}

	result := Validate(source, parsed)

	assert.NotEqual(t, GradeA, result.Grade)
	assert.False(t, result.NumbersOK)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "5000")
}

func TestValidateNumberFormattingNormalized(t *testing.T) {
	source := "예산은 1,200억원으로 책정됐다"
	parsed := ParsedArticle{Numbers: []string{"1200"}}

	result := Validate(source, parsed)
	assert.True(t, result.NumbersOK)
	assert.Equal(t, GradeA, result.Grade)
}

func TestValidateQuotePresent(t *testing.T) {
	source := `시장은 "지역 농가를 끝까지 지원하겠다"고 말했다`
	parsed := ParsedArticle{Quotes: []string{"지역 농가를 끝까지 지원하겠다"}}

	result := Validate(source, parsed)
	assert.True(t, result.QuotesOK)
	assert.Equal(t, GradeA, result.Grade)
}

func TestValidateQuoteWhitespaceNormalized(t *testing.T) {
	source := "시장은 \"지역  농가를\n끝까지 지원하겠다\"고 말했다"
	parsed := ParsedArticle{Quotes: []string{"지역 농가를 끝까지 지원하겠다"}}

	result := Validate(source, parsed)
	assert.True(t, result.QuotesOK)
}

func TestValidateQuoteNotInSource(t *testing.T) {
	source := "시장은 행사에 참석했다"
	parsed := ParsedArticle{Quotes: []string{"우리는 반드시 승리한다"}}

	result := Validate(source, parsed)
	assert.False(t, result.QuotesOK)
	assert.Equal(t, GradeB, result.Grade)
}

func TestValidateGradeThresholds(t *testing.T) {
	source := "아무 숫자도 없는 본문"

	cases := []struct {
		claims int
		want   Grade
	}{
		{0, GradeA},
		{1, GradeB},
		{2, GradeC},
		{3, GradeC},
		{4, GradeD},
		{7, GradeD},
	}
	for _, tc := range cases {
		numbers := make([]string, tc.claims)
		for i := range numbers {
			numbers[i] = "100" + string(rune('0'+i))
		}
		result := Validate(source, ParsedArticle{Numbers: numbers})
		assert.Equal(t, tc.want, result.Grade, "claims=%d", tc.claims)
	}
}

func TestValidateMonotonicity(t *testing.T) {
	source := "인구는 3500명이다"

	prev := Validate(source, ParsedArticle{Numbers: []string{"3500"}})
	for extra := 1; extra <= 6; extra++ {
		numbers := []string{"3500"}
		for i := 0; i < extra; i++ {
			numbers = append(numbers, "999"+string(rune('0'+i)))
		}
		cur := Validate(source, ParsedArticle{Numbers: numbers})
		assert.GreaterOrEqual(t, gradeRank[cur.Grade], gradeRank[prev.Grade],
			"more mismatches must never improve the grade")
		prev = cur
	}
}

func TestValidateDeterministic(t *testing.T) {
	source := "마을 축제에 2000명이 참가했다"
	parsed := ParsedArticle{Numbers: []string{"2000", "42"}, Quotes: []string{"즐거웠다"}}

	a := Validate(source, parsed)
	b := Validate(source, parsed)
	assert.Equal(t, a, b)
}

func TestWorseGrade(t *testing.T) {
	assert.Equal(t, GradeB, WorseGrade(GradeA, GradeB))
	assert.Equal(t, GradeB, WorseGrade(GradeB, GradeA))
	assert.Equal(t, GradeD, WorseGrade(GradeD, GradeA))
	assert.Equal(t, GradeC, WorseGrade(GradeC, GradeC))
}
