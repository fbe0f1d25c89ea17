package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
	"github.com/charlesng35/classifieds/internal/middleware"
	"github.com/charlesng35/classifieds/internal/permissions"
)

func registerPermissionRoutes(protected *gin.RouterGroup, auditor middleware.DenialAuditor, handler *handlers.PermissionHandler) {
	perms := protected.Group("/permissions")
	{
		perms.GET("/registry", middleware.RequirePermission(auditor, permissions.PermissionsView), handler.Registry)
		perms.GET("/me", handler.Mine)
	}
}
