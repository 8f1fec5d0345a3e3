package source

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/modules/article"
	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
)

type IngestSourceDTO struct {
	Title    string  `json:"title" binding:"required"`
	Text     string  `json:"text" binding:"required"`
	Origin   string  `json:"origin"`
	RegionID *string `json:"region_id"`
}

// Service manages raw source material submitted for rewriting.
type Service struct {
	db       *gorm.DB
	articles *article.Service
}

func NewService(db *gorm.DB, articles *article.Service) *Service {
	return &Service{db: db, articles: articles}
}

func (s *Service) List(q pagination.Query, regionID *string, ingested *bool) ([]models.SourceModel, response.Pagination, error) {
	tx := s.db.Model(&models.SourceModel{}).Order("created_at DESC")
	if regionID != nil {
		tx = tx.Where("region_id = ?", *regionID)
	}
	if ingested != nil {
		tx = tx.Where("ingested = ?", *ingested)
	}
	var sources []models.SourceModel
	pag, err := pagination.Paginate(tx, q, &sources)
	return sources, pag, err
}

func (s *Service) GetByID(id string) (*models.SourceModel, error) {
	var src models.SourceModel
	if err := s.db.First(&src, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &src, nil
}

func (s *Service) Ingest(dto *IngestSourceDTO) (*models.SourceModel, error) {
	src := models.SourceModel{
		Title:    dto.Title,
		Text:     dto.Text,
		Origin:   dto.Origin,
		RegionID: dto.RegionID,
	}
	return &src, s.db.Create(&src).Error
}

// CreateDraft spins a draft article off a source so the rewrite pipeline
// has a persistence target. The source is marked ingested and linked to
// the new article.
func (s *Service) CreateDraft(sourceID string) (*models.ArticleModel, error) {
	src, err := s.GetByID(sourceID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}
	if src.ArticleID != nil {
		return s.articles.GetByID(*src.ArticleID)
	}

	a, err := s.articles.Create(&article.CreateArticleDTO{
		Title:    src.Title,
		Text:     src.Text,
		RegionID: src.RegionID,
		SourceID: &src.ID,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Model(src).Updates(map[string]interface{}{
		"article_id": a.ID,
		"ingested":   true,
	}).Error
	return a, err
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.SourceModel{}, "id = ?", id).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sources", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.ingest)
	g.POST("/:id/article", h.createDraft)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	var regionID *string
	if v := c.Query("region_id"); v != "" {
		regionID = &v
	}
	var ingested *bool
	if v := c.Query("ingested"); v != "" {
		b := v == "true" || v == "1"
		ingested = &b
	}
	sources, pag, err := h.svc.List(q, regionID, ingested)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, sources, pag)
}

func (h *Handler) get(c *gin.Context) {
	src, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if src == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, src)
}

func (h *Handler) ingest(c *gin.Context) {
	var dto IngestSourceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	src, err := h.svc.Ingest(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, src)
}

func (h *Handler) createDraft(c *gin.Context) {
	a, err := h.svc.CreateDraft(c.Param("id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.Created(c, a)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
