package article

// CreateArticleDTO is the admin create payload.
type CreateArticleDTO struct {
	Title      string   `json:"title" binding:"required"`
	Slug       string   `json:"slug"`
	Text       string   `json:"text"`
	Summary    string   `json:"summary"`
	Status     string   `json:"status"`
	RegionID   *string  `json:"region_id"`
	ReporterID *string  `json:"reporter_id"`
	SourceID   *string  `json:"source_id"`
	Tags       []string `json:"tags"`
	Keywords   []string `json:"keywords"`
}

// UpdateArticleDTO patches an article; nil fields are left untouched.
type UpdateArticleDTO struct {
	Title      *string  `json:"title"`
	Slug       *string  `json:"slug"`
	Text       *string  `json:"text"`
	Summary    *string  `json:"summary"`
	Status     *string  `json:"status"`
	RegionID   *string  `json:"region_id"`
	ReporterID *string  `json:"reporter_id"`
	Tags       []string `json:"tags"`
	Keywords   []string `json:"keywords"`
}

// ListQuery narrows the article listing.
type ListQuery struct {
	Region *string
	Status *string
	Tag    *string
	Grade  *string
}
