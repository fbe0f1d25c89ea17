package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

func registerReportRoutes(protected, admin *gin.RouterGroup, throttle gin.HandlerFunc, handler *handlers.ReportHandler) {
	protected.POST("/reports", throttle, handler.Create)

	reports := admin.Group("/reports")
	{
		reports.GET("", handler.List)
		reports.PATCH("/:id", handler.Update)
	}
}
