package models

// UsageLogModel is one append-only row per model call attempt, for
// quota accounting and operator visibility.
type UsageLogModel struct {
	Base
	Region       string `json:"region"        gorm:"index"`
	Provider     string `json:"provider"      gorm:"index"`
	Model        string `json:"model"`
	KeyLabel     string `json:"key_label"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	ArticleID    string `json:"article_id"    gorm:"index"`
	Succeeded    bool   `json:"succeeded"`
	Error        string `json:"error,omitempty" gorm:"type:text"`
}

func (UsageLogModel) TableName() string { return "ai_usage_logs" }
