package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/handlers"
)

func registerAuthRoutes(public, protected *gin.RouterGroup, throttle gin.HandlerFunc, auth *handlers.AuthHandler, users *handlers.UserHandler) {
	authGroup := public.Group("/auth")
	{
		authGroup.POST("/register", throttle, auth.Register)
		authGroup.POST("/login", throttle, auth.Login)
	}

	protected.GET("/auth/me", auth.Me)
	protected.PATCH("/users/me", throttle, users.UpdateMe)
}
