package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/middleware"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/internal/usecases"
)

// NotificationHandler handles inbox and admin broadcast endpoints
type NotificationHandler struct {
	notificationUsecase *usecases.NotificationUsecase
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationUsecase *usecases.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// Broadcast sends a notification to every user
// POST /api/v1/admin/send-notification
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	sender, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.ErrForbidden)
		return
	}

	var input entities.BroadcastInput
	if !bindJSON(c, &input, false) {
		return
	}

	result, err := h.notificationUsecase.Broadcast(c.Request.Context(), sender, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// List returns the caller's notifications
// GET /api/v1/user/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}
	pagination, ok := bindPagination(c)
	if !ok {
		return
	}

	items, meta, err := h.notificationUsecase.List(c.Request.Context(), uid, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// UnreadCount returns the number of unread notifications
// GET /api/v1/user/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// MarkRead marks notifications as read; an empty body marks all of them
// POST /api/v1/user/notifications/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	var input entities.MarkReadInput
	if !bindJSON(c, &input, true) {
		return
	}

	updated, err := h.notificationUsecase.MarkRead(c.Request.Context(), uid, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}
