package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/response"
	"github.com/resulta/resulta-gateway/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifs, err := h.notificationService.List(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": notifs})
}

// UnreadCount godoc
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead godoc
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), id, middleware.UserKey(c)); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}

// MarkAllRead godoc
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.UserKey(c)); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "all notifications marked as read"})
}
