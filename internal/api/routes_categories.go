package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

func registerCategoryRoutes(public, admin *gin.RouterGroup, handler *handlers.CategoryHandler) {
	public.GET("/categories", handler.Tree)
	public.GET("/categories/:id/schema", handler.Schema)

	admin.POST("/categories", handler.Create)
}
