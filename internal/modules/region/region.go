package region

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/pkg/response"
)

type CreateRegionDTO struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
}

type UpdateRegionDTO struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns all regions; non-admin callers only see enabled ones.
func (s *Service) List(isAdmin bool) ([]models.RegionModel, error) {
	tx := s.db.Order("name ASC")
	if !isAdmin {
		tx = tx.Where("enabled = ?", true)
	}
	var regions []models.RegionModel
	return regions, tx.Find(&regions).Error
}

func (s *Service) GetBySlug(slug string) (*models.RegionModel, error) {
	var r models.RegionModel
	if err := s.db.Where("slug = ?", slug).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) Create(dto *CreateRegionDTO) (*models.RegionModel, error) {
	var count int64
	s.db.Model(&models.RegionModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("slug already exists")
	}

	r := models.RegionModel{
		Name:        dto.Name,
		Slug:        dto.Slug,
		Description: dto.Description,
		Enabled:     true,
	}
	if dto.Enabled != nil {
		r.Enabled = *dto.Enabled
	}
	return &r, s.db.Create(&r).Error
}

func (s *Service) Update(id string, dto *UpdateRegionDTO) (*models.RegionModel, error) {
	var r models.RegionModel
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Enabled != nil {
		updates["enabled"] = *dto.Enabled
	}
	if len(updates) == 0 {
		return &r, nil
	}
	return &r, s.db.Model(&r).Updates(updates).Error
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.RegionModel{}, "id = ?", id).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/regions")
	g.GET("", h.list)
	g.GET("/:slug", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:slug", h.update)
	a.DELETE("/:slug", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	regions, err := h.svc.List(false)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, regions)
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if r == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, r)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateRegionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	r, err := h.svc.Create(&dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, r)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateRegionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	existing, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if existing == nil {
		response.NotFound(c)
		return
	}
	r, err := h.svc.Update(existing.ID, &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, r)
}

func (h *Handler) remove(c *gin.Context) {
	existing, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if existing == nil {
		response.NotFound(c)
		return
	}
	if err := h.svc.Delete(existing.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
