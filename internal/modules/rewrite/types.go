package rewrite

// RewriteRequest is constructed per call and never persisted.
type RewriteRequest struct {
	SourceText     string `json:"sourceText" binding:"required"`
	Style          string `json:"style"`
	Provider       string `json:"provider"`
	Credential     string `json:"credential"`
	ReporterID     string `json:"reporterId"`
	ArticleID      string `json:"articleId"`
	Structured     bool   `json:"structured"`
	PromptOverride string `json:"promptOverride"`
	Region         string `json:"region"`
}

// ParsedArticle is the structured result of parsing model output.
// Instances are never mutated after creation; a second parse produces
// a new one.
type ParsedArticle struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	BodyHTML string   `json:"body_html"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Tags     []string `json:"tags"`
	Numbers  []string `json:"numbers"`
	Quotes   []string `json:"quotes"`
}

// Grade is the ordinal fact-accuracy score; A is required for
// automatic publication.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

var gradeRank = map[Grade]int{GradeA: 0, GradeB: 1, GradeC: 2, GradeD: 3}

// WorseGrade returns the worse of two grades.
func WorseGrade(a, b Grade) Grade {
	if gradeRank[b] > gradeRank[a] {
		return b
	}
	return a
}

// ValidationResult is the immutable outcome of fact cross-checking.
type ValidationResult struct {
	Grade     Grade    `json:"grade"`
	Warnings  []string `json:"warnings"`
	NumbersOK bool     `json:"numbers_ok"`
	QuotesOK  bool     `json:"quotes_ok"`
}

// Usage holds approximate token counts for one model call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// PublishOutcome reports what the decision engine did for one attempt.
type PublishOutcome struct {
	Published bool     `json:"published"`
	Cancelled bool     `json:"cancelled"`
	ArticleID string   `json:"article_id,omitempty"`
	Grade     Grade    `json:"grade"`
	Warnings  []string `json:"warnings"`
}

// RewriteUpdate carries the fields applied to an article on a grade-A
// publish.
type RewriteUpdate struct {
	Title           string
	Slug            string
	Text            string
	Summary         string
	Tags            []string
	Keywords        []string
	Grade           Grade
	DoubleValidated bool
}

type rewriteDTO struct {
	SourceText     string `json:"sourceText"`
	Text           string `json:"text"` // legacy alias for sourceText
	Style          string `json:"style"`
	Provider       string `json:"provider"`
	Credential     string `json:"credential"`
	APIKey         string `json:"apiKey"` // legacy alias for credential
	ReporterID     string `json:"reporterId"`
	ArticleID      string `json:"articleId"`
	Structured     bool   `json:"structured"`
	PromptOverride string `json:"promptOverride"`
	Region         string `json:"region"`
}

// RewritePayload is the task payload for async rewrites.
type RewritePayload struct {
	Request RewriteRequest `json:"request"`
}
