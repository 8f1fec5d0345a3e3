package reporter

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
)

type CreateReporterDTO struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone"`
	RegionID *string `json:"region_id"`
}

type UpdateReporterDTO struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	RegionID *string `json:"region_id"`
	Active   *bool   `json:"active"`
}

// AISettingsDTO updates a reporter's personal rewrite credentials.
type AISettingsDTO struct {
	AIEnabled  *bool   `json:"ai_enabled"`
	AIProvider *string `json:"ai_provider"`
	AIAPIKey   *string `json:"ai_api_key"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, regionID *string) ([]models.ReporterModel, response.Pagination, error) {
	tx := s.db.Model(&models.ReporterModel{}).Order("name ASC")
	if regionID != nil {
		tx = tx.Where("region_id = ?", *regionID)
	}
	var reporters []models.ReporterModel
	pag, err := pagination.Paginate(tx, q, &reporters)
	return reporters, pag, err
}

func (s *Service) GetByID(id string) (*models.ReporterModel, error) {
	var r models.ReporterModel
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) Create(dto *CreateReporterDTO) (*models.ReporterModel, error) {
	var count int64
	s.db.Model(&models.ReporterModel{}).Where("email = ?", dto.Email).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("email already registered")
	}

	r := models.ReporterModel{
		Name:     dto.Name,
		Email:    dto.Email,
		Phone:    dto.Phone,
		RegionID: dto.RegionID,
		Active:   true,
	}
	return &r, s.db.Create(&r).Error
}

func (s *Service) Update(id string, dto *UpdateReporterDTO) (*models.ReporterModel, error) {
	r, err := s.GetByID(id)
	if err != nil || r == nil {
		return r, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Email != nil {
		updates["email"] = *dto.Email
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.RegionID != nil {
		updates["region_id"] = *dto.RegionID
	}
	if dto.Active != nil {
		updates["active"] = *dto.Active
	}
	if len(updates) == 0 {
		return r, nil
	}
	return r, s.db.Model(r).Updates(updates).Error
}

// UpdateAISettings replaces a reporter's personal rewrite settings. The
// key is stored as-is; it never appears in JSON responses.
func (s *Service) UpdateAISettings(id string, dto *AISettingsDTO) (*models.ReporterModel, error) {
	r, err := s.GetByID(id)
	if err != nil || r == nil {
		return r, err
	}

	updates := map[string]interface{}{}
	if dto.AIEnabled != nil {
		updates["ai_enabled"] = *dto.AIEnabled
	}
	if dto.AIProvider != nil {
		updates["ai_provider"] = *dto.AIProvider
	}
	if dto.AIAPIKey != nil {
		updates["ai_api_key"] = *dto.AIAPIKey
	}
	if len(updates) == 0 {
		return r, nil
	}
	return r, s.db.Model(r).Updates(updates).Error
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.ReporterModel{}, "id = ?", id).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/reporters", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PUT("/:id/ai", h.updateAISettings)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	var regionID *string
	if v := c.Query("region_id"); v != "" {
		regionID = &v
	}
	reporters, pag, err := h.svc.List(q, regionID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, reporters, pag)
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.svc.GetByID(c.Param("id"))
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
	var dto CreateReporterDTO
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
	var dto UpdateReporterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	r, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if r == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, r)
}

func (h *Handler) updateAISettings(c *gin.Context) {
	var dto AISettingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	r, err := h.svc.UpdateAISettings(c.Param("id"), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if r == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, r)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
