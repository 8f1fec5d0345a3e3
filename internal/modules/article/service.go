package article

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
)

// Service handles article business logic.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns a paginated list of articles, newest first.
func (s *Service) List(q pagination.Query, lq ListQuery, isAdmin bool) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{}).
		Preload("Region").
		Order("created_at DESC")

	if !isAdmin {
		tx = tx.Where("status = ?", models.ArticleStatusPublished)
	}
	if lq.Status != nil && isAdmin {
		tx = tx.Where("status = ?", *lq.Status)
	}
	if lq.Region != nil {
		tx = tx.Joins("JOIN regions ON regions.id = articles.region_id").
			Where("regions.slug = ?", *lq.Region)
	}
	if lq.Tag != nil {
		tx = tx.Where("JSON_CONTAINS(tags, ?)", fmt.Sprintf("%q", *lq.Tag))
	}
	if lq.Grade != nil && isAdmin {
		tx = tx.Where("validation_grade = ?", *lq.Grade)
	}

	var articles []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &articles)
	return articles, pag, err
}

// GetByID fetches a single article by ID.
func (s *Service) GetByID(id string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	if err := s.db.Preload("Region").First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetBySlug fetches a single article by slug.
func (s *Service) GetBySlug(slug string, isAdmin bool) (*models.ArticleModel, error) {
	var a models.ArticleModel
	tx := s.db.Preload("Region").Where("slug = ?", slug)
	if !isAdmin {
		tx = tx.Where("status = ?", models.ArticleStatusPublished)
	}
	if err := tx.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByIdentifier fetches an article by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.ArticleModel, error) {
	if a, err := s.GetByID(identifier); err != nil {
		return nil, err
	} else if a != nil {
		if !isAdmin && a.Status != models.ArticleStatusPublished {
			return nil, nil
		}
		return a, nil
	}
	return s.GetBySlug(identifier, isAdmin)
}

// Create inserts a new article, defaulting to draft.
func (s *Service) Create(dto *CreateArticleDTO) (*models.ArticleModel, error) {
	slug := strings.TrimSpace(dto.Slug)
	if slug == "" {
		slug = Slugify(dto.Title)
	}
	var count int64
	s.db.Model(&models.ArticleModel{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("slug already exists")
	}

	status := dto.Status
	if status == "" {
		status = models.ArticleStatusDraft
	}

	a := models.ArticleModel{
		Title:      dto.Title,
		Slug:       slug,
		Text:       dto.Text,
		Summary:    dto.Summary,
		Status:     status,
		RegionID:   dto.RegionID,
		ReporterID: dto.ReporterID,
		SourceID:   dto.SourceID,
		Tags:       models.StringSlice(dto.Tags),
		Keywords:   models.StringSlice(dto.Keywords),
	}
	if status == models.ArticleStatusPublished {
		now := time.Now()
		a.PublishedAt = &now
	}
	if err := s.db.Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Update patches an article by ID.
func (s *Service) Update(id string, dto *UpdateArticleDTO) (*models.ArticleModel, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Text != nil {
		updates["text"] = *dto.Text
	}
	if dto.Summary != nil {
		updates["summary"] = *dto.Summary
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
		if *dto.Status == models.ArticleStatusPublished && a.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}
	if dto.RegionID != nil {
		updates["region_id"] = *dto.RegionID
	}
	if dto.ReporterID != nil {
		updates["reporter_id"] = *dto.ReporterID
	}
	if dto.Tags != nil {
		updates["tags"] = models.StringSlice(dto.Tags)
	}
	if dto.Keywords != nil {
		updates["keywords"] = models.StringSlice(dto.Keywords)
	}
	if len(updates) == 0 {
		return a, nil
	}
	updates["version"] = a.Version + 1

	result := s.db.Model(&models.ArticleModel{}).
		Where("id = ? AND version = ?", id, a.Version).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("article was modified concurrently")
	}
	return s.GetByID(id)
}

// SetStatus moves an article between draft and published.
func (s *Service) SetStatus(id, status string) (*models.ArticleModel, error) {
	return s.Update(id, &UpdateArticleDTO{Status: &status})
}

// Delete soft-deletes an article by ID.
func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.ArticleModel{}, "id = ?", id).Error
}

// IncrementReadCount atomically increments the read counter.
func (s *Service) IncrementReadCount(id string) error {
	return s.db.Model(&models.ArticleModel{}).Where("id = ?", id).
		UpdateColumn("read_count", gorm.Expr("read_count + 1")).Error
}

// Slugify converts a title to a URL-friendly slug, keeping non-latin
// letters intact.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")

	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			sb.WriteRune(r)
		}
	}
	result := strings.Trim(sb.String(), "-")
	if result == "" {
		result = fmt.Sprintf("article-%d", time.Now().UnixMilli())
	}
	return result
}
