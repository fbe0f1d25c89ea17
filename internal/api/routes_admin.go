package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

type adminHandlers struct {
	Moderation  *handlers.ModerationHandler
	Users       *handlers.UserHandler
	Permissions *handlers.PermissionHandler
	Audit       *handlers.AuditHandler
}

func registerAdminRoutes(admin *gin.RouterGroup, h adminHandlers) {
	ads := admin.Group("/ads")
	{
		ads.GET("", h.Moderation.List)
		ads.POST("/:id/approve", h.Moderation.Approve)
		ads.POST("/:id/reject", h.Moderation.Reject)
		ads.POST("/:id/suspend", h.Moderation.Suspend)
		ads.POST("/:id/unsuspend", h.Moderation.Unsuspend)
	}

	users := admin.Group("/users")
	{
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id/active", h.Users.SetActive)
		users.PUT("/:id/role", h.Permissions.SetRole)
		users.GET("/:id/permissions", h.Permissions.ListGrants)
		users.POST("/:id/permissions/:permission", h.Permissions.Grant)
		users.DELETE("/:id/permissions/:permission", h.Permissions.Revoke)
	}

	admin.GET("/audit", h.Audit.List)
}
