package models

// RegionModel is a coverage region (city/county) articles belong to.
type RegionModel struct {
	Base
	Name        string `json:"name"        gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug"        gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Enabled     bool   `json:"enabled"     gorm:"default:true;index"`
}

func (RegionModel) TableName() string { return "regions" }
