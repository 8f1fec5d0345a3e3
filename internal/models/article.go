package models

import "time"

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
	ArticleStatusRejected  = "rejected"
	ArticleStatusTrash     = "trash"
)

// ArticleModel is a regional news article. Reporters create articles in
// draft state; the rewrite pipeline and admin moderation move them
// between draft and published.
type ArticleModel struct {
	Base
	Title      string      `json:"title"       gorm:"not null"`
	Slug       string      `json:"slug"        gorm:"uniqueIndex;not null"`
	Text       string      `json:"text"        gorm:"type:longtext"`
	Summary    string      `json:"summary"     gorm:"type:text"`
	Status     string      `json:"status"      gorm:"index;default:'draft'"`
	RegionID   *string     `json:"region_id"   gorm:"index"`
	Region     *RegionModel `json:"region,omitempty"   gorm:"foreignKey:RegionID"`
	ReporterID *string     `json:"reporter_id" gorm:"index"`
	SourceID   *string     `json:"source_id"   gorm:"index"`
	Tags       StringSlice `json:"tags"        gorm:"type:json;serializer:json"`
	Keywords   StringSlice `json:"keywords"    gorm:"type:json;serializer:json"`

	// AI rewrite pipeline fields, written only by the publish decision engine.
	AIProcessed        bool        `json:"ai_processed"        gorm:"default:false"`
	ValidationGrade    string      `json:"validation_grade"    gorm:"type:char(1)"`
	ValidationWarnings StringSlice `json:"validation_warnings" gorm:"type:json;serializer:json"`
	DoubleValidated    bool        `json:"double_validated"    gorm:"default:false"`

	// Version guards concurrent rewrite attempts against the same article.
	Version     int        `json:"version"      gorm:"default:0"`
	PublishedAt *time.Time `json:"published_at"`
	ReadCount   int        `json:"read"         gorm:"column:read_count;default:0"`
}

func (ArticleModel) TableName() string { return "articles" }
