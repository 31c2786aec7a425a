package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/response"
	"github.com/resulta/resulta-gateway/internal/service"
	"github.com/resulta/resulta-gateway/internal/validator"
)

type NewsHandler struct {
	newsService *service.NewsService
}

func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// List godoc
// GET /api/v1/news
func (h *NewsHandler) List(c *gin.Context) {
	var q listQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	spec := buildSpec(c, q, service.NewsSchema)

	result, err := h.newsService.ListNews(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c), spec)
	if err != nil {
		failUpstream(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"news": result.Items},
		pagination(spec.Page, spec.PageSize, result.Total, result.TotalPages))
}

// MarkRead godoc
// POST /api/v1/news/:id/read
func (h *NewsHandler) MarkRead(c *gin.Context) {
	itemID := c.Param("id")
	if itemID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	err := h.newsService.MarkRead(c.Request.Context(),
		middleware.Token(c), itemID, middleware.UserKey(c))
	if err != nil {
		failUpstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "marked as read"})
}

// MarkAllRead godoc
// POST /api/v1/news/read-all
func (h *NewsHandler) MarkAllRead(c *gin.Context) {
	err := h.newsService.MarkAllRead(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c))
	if err != nil {
		failUpstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "all items marked as read"})
}
