package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

// registerNotificationRoutes mounts the inbox of the authenticated user.
func registerNotificationRoutes(protected *gin.RouterGroup, handler *handlers.NotificationHandler) {
	inbox := protected.Group("/notifications")
	inbox.GET("", handler.List)
	inbox.POST("/read-all", handler.MarkAllRead)
	inbox.POST("/:id/read", handler.MarkRead)
}
