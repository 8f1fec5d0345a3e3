package usage

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
)

// Service reads the append-only AI usage log for admin reporting.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type ListQuery struct {
	Region    *string
	Provider  *string
	Succeeded *bool
}

func (s *Service) List(q pagination.Query, lq ListQuery) ([]models.UsageLogModel, response.Pagination, error) {
	tx := s.db.Model(&models.UsageLogModel{}).Order("created_at DESC")
	if lq.Region != nil {
		tx = tx.Where("region = ?", *lq.Region)
	}
	if lq.Provider != nil {
		tx = tx.Where("provider = ?", *lq.Provider)
	}
	if lq.Succeeded != nil {
		tx = tx.Where("succeeded = ?", *lq.Succeeded)
	}
	var logs []models.UsageLogModel
	pag, err := pagination.Paginate(tx, q, &logs)
	return logs, pag, err
}

type providerSummary struct {
	Provider     string `json:"provider"`
	Calls        int64  `json:"calls"`
	Failures     int64  `json:"failures"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// Summary aggregates usage per provider since the given time.
func (s *Service) Summary(since time.Time) ([]providerSummary, error) {
	var rows []providerSummary
	err := s.db.Model(&models.UsageLogModel{}).
		Select("provider, COUNT(*) AS calls, SUM(CASE WHEN succeeded THEN 0 ELSE 1 END) AS failures, COALESCE(SUM(input_tokens),0) AS input_tokens, COALESCE(SUM(output_tokens),0) AS output_tokens").
		Where("created_at >= ?", since).
		Group("provider").
		Scan(&rows).Error
	if rows == nil {
		rows = []providerSummary{}
	}
	return rows, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/usage", authMW)
	g.GET("", h.list)
	g.GET("/summary", h.summary)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	var lq ListQuery
	if v := c.Query("region"); v != "" {
		lq.Region = &v
	}
	if v := c.Query("provider"); v != "" {
		lq.Provider = &v
	}
	if v := c.Query("succeeded"); v != "" {
		b := v == "true" || v == "1"
		lq.Succeeded = &b
	}
	logs, pag, err := h.svc.List(q, lq)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, logs, pag)
}

// summary defaults to the last 30 days; ?days=N adjusts the window.
func (h *Handler) summary(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	since := time.Now().AddDate(0, 0, -days)
	rows, err := h.svc.Summary(since)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"since": since, "providers": rows})
}
