package article

import (
	"github.com/gin-gonic/gin"

	"github.com/regionpress/core/internal/middleware"
	"github.com/regionpress/core/internal/models"
	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/articles")

	g.GET("", middleware.OptionalAuth(), h.list)
	g.GET("/:identifier", middleware.OptionalAuth(), h.get)
	g.GET("/:identifier/render", middleware.OptionalAuth(), h.render)
	g.POST("/:identifier/read", h.incrementRead)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:identifier", h.update)
	a.DELETE("/:identifier", h.remove)
	a.POST("/:identifier/publish", h.publish)
	a.POST("/:identifier/unpublish", h.unpublish)
}

func listQueryFromContext(c *gin.Context) ListQuery {
	var lq ListQuery
	if v := c.Query("region"); v != "" {
		lq.Region = &v
	}
	if v := c.Query("status"); v != "" {
		lq.Status = &v
	}
	if v := c.Query("tag"); v != "" {
		lq.Tag = &v
	}
	if v := c.Query("grade"); v != "" {
		lq.Grade = &v
	}
	return lq
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	articles, pag, err := h.svc.List(q, listQueryFromContext(c), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, articles, pag)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.svc.GetByIdentifier(c.Param("identifier"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, a)
}

func (h *Handler) render(c *gin.Context) {
	a, err := h.svc.GetByIdentifier(c.Param("identifier"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{
		"id":    a.ID,
		"title": a.Title,
		"html":  RenderMarkdown(a.Text),
	})
}

func (h *Handler) incrementRead(c *gin.Context) {
	if err := h.svc.IncrementReadCount(c.Param("identifier")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Create(&dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, a)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Update(c.Param("identifier"), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, a)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("identifier")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) publish(c *gin.Context) {
	h.setStatus(c, models.ArticleStatusPublished)
}

func (h *Handler) unpublish(c *gin.Context) {
	h.setStatus(c, models.ArticleStatusDraft)
}

func (h *Handler) setStatus(c *gin.Context, status string) {
	a, err := h.svc.SetStatus(c.Param("identifier"), status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, a)
}
