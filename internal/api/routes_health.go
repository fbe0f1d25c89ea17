package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
	"github.com/charlesng35/classifieds/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, probes []monitoring.Check) {
	health := handlers.Health(probes...)
	r.GET("/health", health)
	r.GET("/api/health", health)
}
