package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

func registerAdRoutes(public, protected *gin.RouterGroup, throttle gin.HandlerFunc, handler *handlers.AdHandler) {
	public.GET("/ads", handler.List)
	public.GET("/ads/:id", handler.Get)

	ads := protected.Group("/ads")
	{
		ads.GET("/mine", handler.Mine)
		ads.POST("", throttle, handler.Create)
		ads.PATCH("/:id", throttle, handler.Update)
		ads.DELETE("/:id", throttle, handler.Delete)
		ads.GET("/:id/history", handler.History)
	}
}
