package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

// NotificationHandler serves the inbox of the signed-in user.
type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GET /api/notifications?unread=true&page=&per_page=
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	page, perPage := pagination(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	items, total, err := h.service.ListForUser(requestContext(c), services.ListNotificationsInput{
		UserID:     actor.ID,
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, items, page, perPage, total)
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	item, err := h.service.MarkRead(requestContext(c), actor.ID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	changed, err := h.service.MarkAllRead(requestContext(c), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": changed})
}
