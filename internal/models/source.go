package models

// SourceModel is a raw press release or tip submitted for rewriting.
// Ingestion turns a source into a draft article; the original text is
// kept for fact cross-checking.
type SourceModel struct {
	Base
	Title     string  `json:"title"`
	Text      string  `json:"text"      gorm:"type:longtext;not null"`
	Origin    string  `json:"origin"` // e.g. city hall, police, submitted
	RegionID  *string `json:"region_id" gorm:"index"`
	ArticleID *string `json:"article_id" gorm:"index"` // draft created from this source
	Ingested  bool    `json:"ingested"  gorm:"default:false;index"`
}

func (SourceModel) TableName() string { return "sources" }
