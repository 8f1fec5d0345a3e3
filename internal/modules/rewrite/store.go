package rewrite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	// ErrArticleConflict means another writer updated the article between
	// our read and our update.
	ErrArticleConflict = errors.New("article was modified concurrently")
)

type gormArticleStore struct {
	db *gorm.DB
}

// NewArticleStore returns the database-backed ArticleStore. Updates are
// guarded by the article's version column so two concurrent rewrite
// attempts against the same article cannot interleave their writes.
func NewArticleStore(db *gorm.DB) ArticleStore {
	return &gormArticleStore{db: db}
}

func (s *gormArticleStore) Publish(ctx context.Context, articleID string, update RewriteUpdate) error {
	now := time.Now()
	return s.versionedUpdate(ctx, articleID, map[string]interface{}{
		"title":               update.Title,
		"slug":                update.Slug,
		"text":                update.Text,
		"summary":             update.Summary,
		"tags":                models.StringSlice(update.Tags),
		"keywords":            models.StringSlice(update.Keywords),
		"status":              models.ArticleStatusPublished,
		"published_at":        &now,
		"ai_processed":        true,
		"validation_grade":    string(update.Grade),
		"validation_warnings": models.StringSlice{},
		"double_validated":    update.DoubleValidated,
	})
}

func (s *gormArticleStore) Hold(ctx context.Context, articleID string, grade Grade, warnings []string) error {
	return s.versionedUpdate(ctx, articleID, map[string]interface{}{
		"status":              models.ArticleStatusDraft,
		"ai_processed":        false,
		"validation_grade":    string(grade),
		"validation_warnings": models.StringSlice(warnings),
		"double_validated":    false,
	})
}

type gormReporterLookup struct {
	db *gorm.DB
}

// NewReporterLookup resolves per-reporter AI settings from the database.
func NewReporterLookup(db *gorm.DB) ReporterLookup {
	return &gormReporterLookup{db: db}
}

func (l *gormReporterLookup) ReporterAI(ctx context.Context, reporterID string) (string, string, bool, error) {
	var reporter models.ReporterModel
	err := l.db.WithContext(ctx).
		Select("id", "ai_enabled", "ai_provider", "ai_api_key").
		Where("id = ?", reporterID).
		First(&reporter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	if !reporter.AIEnabled || reporter.AIProvider == "" || reporter.AIAPIKey == "" {
		return "", "", false, nil
	}
	return reporter.AIProvider, reporter.AIAPIKey, true, nil
}

func (s *gormArticleStore) versionedUpdate(ctx context.Context, articleID string, fields map[string]interface{}) error {
	var article models.ArticleModel
	err := s.db.WithContext(ctx).
		Select("id", "version").
		Where("id = ?", articleID).
		First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return err
	}

	fields["version"] = article.Version + 1
	result := s.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("id = ? AND version = ?", articleID, article.Version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleConflict
	}
	return nil
}
