package models

import "time"

// ReporterModel is a field reporter who can submit articles and may
// carry personal AI rewrite settings overriding the global provider.
type ReporterModel struct {
	Base
	Name     string  `json:"name"      gorm:"not null"`
	Email    string  `json:"email"     gorm:"uniqueIndex"`
	Phone    string  `json:"phone"`
	RegionID *string `json:"region_id" gorm:"index"`
	Active   bool    `json:"active"    gorm:"default:true;index"`

	// Personal AI settings; consulted before the global provider pool
	// when this reporter triggers a rewrite.
	AIEnabled    bool       `json:"ai_enabled"  gorm:"default:false"`
	AIProvider   string     `json:"ai_provider"`
	AIAPIKey     string     `json:"-"           gorm:"column:ai_api_key"`
	LastActiveAt *time.Time `json:"last_active_at"`
}

func (ReporterModel) TableName() string { return "reporters" }
