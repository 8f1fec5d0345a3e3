package rewrite

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/regionpress/core/internal/pkg/pagination"
	"github.com/regionpress/core/internal/pkg/response"
	"github.com/regionpress/core/internal/pkg/taskqueue"
)

const taskTypeRewrite = "article_rewrite"

// Handler exposes the rewrite pipeline over HTTP.
type Handler struct {
	service *Service
	tasks   *taskqueue.Service
	log     *zap.Logger
}

func NewHandler(service *Service, tasks *taskqueue.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, tasks: tasks, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/rewrite")
	g.GET("/styles", h.listStyles)
	g.POST("", authMW, h.rewrite)
	g.POST("/preview", authMW, h.preview)
	g.POST("/async", authMW, h.rewriteAsync)
	g.GET("/tasks", authMW, h.listTasks)
	g.GET("/tasks/:id", authMW, h.getTask)
	g.POST("/tasks/:id/cancel", authMW, h.cancelTask)
	g.DELETE("/tasks/:id", authMW, h.deleteTask)
	g.DELETE("/tasks", authMW, h.cleanupTasks)
}

func (h *Handler) listStyles(c *gin.Context) {
	response.OK(c, gin.H{"styles": Styles(), "default": DefaultStyle})
}

func bindRewriteRequest(c *gin.Context) (RewriteRequest, bool) {
	var dto rewriteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return RewriteRequest{}, false
	}

	source := dto.SourceText
	if strings.TrimSpace(source) == "" {
		source = dto.Text
	}
	credential := dto.Credential
	if strings.TrimSpace(credential) == "" {
		credential = dto.APIKey
	}
	if strings.TrimSpace(source) == "" {
		response.BadRequest(c, "sourceText is required")
		return RewriteRequest{}, false
	}

	return RewriteRequest{
		SourceText:     source,
		Style:          dto.Style,
		Provider:       dto.Provider,
		Credential:     credential,
		ReporterID:     dto.ReporterID,
		ArticleID:      dto.ArticleID,
		Structured:     dto.Structured,
		PromptOverride: dto.PromptOverride,
		Region:         dto.Region,
	}, true
}

func (h *Handler) rewrite(c *gin.Context) {
	req, ok := bindRewriteRequest(c)
	if !ok {
		return
	}

	result, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		h.writeProcessError(c, err)
		return
	}
	response.OK(c, buildRewriteBody(result))
}

// preview runs the full pipeline without touching any article. The bound
// article id is cleared so the decision step stays in memory.
func (h *Handler) preview(c *gin.Context) {
	req, ok := bindRewriteRequest(c)
	if !ok {
		return
	}
	req.ArticleID = ""

	result, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		h.writeProcessError(c, err)
		return
	}
	response.OK(c, buildRewriteBody(result))
}

func (h *Handler) writeProcessError(c *gin.Context, err error) {
	var guardErr *GuardRejectedError
	if errors.As(err, &guardErr) {
		d := guardErr.Decision
		if d.Code == GuardCodeInputTooLong {
			response.BadRequestCode(c, d.Code, d.Reason)
			return
		}
		response.TooManyRequests(c, d.Code, d.Reason)
		return
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":          0,
			"success":     false,
			"error":       parseErr.Reason,
			"rawResponse": parseErr.Raw,
		})
		return
	}

	var persistErr *PersistError
	if errors.As(err, &persistErr) {
		h.log.Error("article update failed after validation", zap.Error(persistErr))
		response.InternalError(c, errors.New("validation succeeded but the article update failed; retry the publish step"))
		return
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		h.log.Error("model call failed", zap.String("provider", provErr.Provider), zap.Error(provErr))
		response.InternalError(c, errors.New("model call failed"))
		return
	}

	response.BadRequest(c, err.Error())
}

func buildRewriteBody(result *Result) gin.H {
	body := gin.H{
		"success":   true,
		"skipped":   result.Skipped,
		"rewritten": result.Text,
	}
	if result.Provider != "" {
		body["provider"] = result.Provider
	} else {
		body["provider"] = nil
	}
	if result.Note != "" {
		body["note"] = result.Note
	}
	if result.Parsed != nil {
		body["parsed"] = result.Parsed
	}
	if result.Validation != nil {
		body["validation"] = result.Validation
	}
	if result.Outcome != nil {
		body["published"] = result.Outcome.Published
		body["cancelled"] = result.Outcome.Cancelled
		body["grade"] = result.Outcome.Grade
		body["warnings"] = result.Outcome.Warnings
	}
	return body
}

func (h *Handler) rewriteAsync(c *gin.Context) {
	req, ok := bindRewriteRequest(c)
	if !ok {
		return
	}
	if !h.tasksReady(c) {
		return
	}

	dedup := ""
	if req.ArticleID != "" {
		dedup = taskTypeRewrite + ":" + req.ArticleID
	}
	task, err := h.tasks.Enqueue(c.Request.Context(), taskTypeRewrite, RewritePayload{Request: req}, dedup, "")
	if err != nil {
		response.InternalError(c, err)
		return
	}

	go h.runRewriteTask(task.ID, req)
	response.Created(c, gin.H{"taskId": task.ID, "status": task.Status})
}

// runRewriteTask executes one queued rewrite in its own goroutine and
// records the outcome on the task record.
func (h *Handler) runRewriteTask(taskID string, req RewriteRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		h.log.Warn("failed to mark rewrite task running", zap.String("task_id", taskID), zap.Error(err))
	}

	result, err := h.service.Process(ctx, req)
	if err != nil {
		if updErr := h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error()); updErr != nil {
			h.log.Warn("failed to mark rewrite task failed", zap.String("task_id", taskID), zap.Error(updErr))
		}
		return
	}
	if err := h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, buildRewriteBody(result), ""); err != nil {
		h.log.Warn("failed to mark rewrite task completed", zap.String("task_id", taskID), zap.Error(err))
	}
}

func (h *Handler) tasksReady(c *gin.Context) bool {
	if h.tasks == nil {
		response.InternalError(c, errors.New("task queue is not configured"))
		return false
	}
	return true
}

func (h *Handler) getTask(c *gin.Context) {
	if !h.tasksReady(c) {
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || task == nil {
		response.NotFoundMsg(c, "task not found")
		return
	}
	response.OK(c, task)
}

// listTasks returns queued rewrite jobs, newest first, with an optional
// status filter.
func (h *Handler) listTasks(c *gin.Context) {
	if !h.tasksReady(c) {
		return
	}
	q := pagination.FromContext(c)
	var status *taskqueue.TaskStatus
	if v := c.Query("status"); v != "" {
		s := taskqueue.TaskStatus(v)
		status = &s
	}
	taskType := taskTypeRewrite
	tasks, total, err := h.tasks.List(c.Request.Context(), q.Page, q.Size, &taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

func (h *Handler) cancelTask(c *gin.Context) {
	if !h.tasksReady(c) {
		return
	}
	if err := h.tasks.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"cancelled": true})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if !h.tasksReady(c) {
		return
	}
	if err := h.tasks.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		response.NotFoundMsg(c, "task not found")
		return
	}
	response.NoContent(c)
}

// cleanupTasks removes finished tasks. A before query param (unix ms)
// limits removal to tasks created earlier than that instant.
func (h *Handler) cleanupTasks(c *gin.Context) {
	if !h.tasksReady(c) {
		return
	}
	before, _ := strconv.ParseInt(c.DefaultQuery("before", "0"), 10, 64)
	if err := h.tasks.DeleteCompleted(c.Request.Context(), before); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
