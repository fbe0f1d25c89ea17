package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/app"
	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/handlers"
	"github.com/charlesng35/classifieds/internal/middleware"
	"github.com/charlesng35/classifieds/internal/monitoring"
)

// NewRouter builds the Gin engine, wires middleware and registers every route.
// rateStore may be nil, in which case an in-process store is used. probes are
// added to the database check behind the health endpoints.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService, cfg *app.Config, svc *app.Services, rateStore middleware.RateStore, probes ...monitoring.Check) (*gin.Engine, error) {
	if db == nil {
		return nil, errors.New("database handle must be provided")
	}
	if tokens == nil {
		return nil, errors.New("token service must be provided")
	}
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if svc == nil {
		return nil, errors.New("services must be provided")
	}
	if rateStore == nil {
		rateStore = middleware.NewMemoryRateStore()
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.HSTS))
	if cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window > 0 {
		r.Use(middleware.RateLimit(rateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	registerHealthRoutes(r, append([]monitoring.Check{monitoring.Database(db, 0)}, probes...))

	requireAuth := middleware.Auth(tokens, svc.Principals)
	throttle := writeThrottle(cfg.RateLimit)

	public := r.Group("/api")
	protected := r.Group("/api")
	protected.Use(requireAuth)
	admin := r.Group("/api/admin")
	admin.Use(requireAuth, middleware.RequireStaff(svc.Audit))

	registerAuthRoutes(public, protected, throttle, handlers.NewAuthHandler(svc.Users, tokens), handlers.NewUserHandler(svc.Users))
	registerAdRoutes(public, protected, throttle, handlers.NewAdHandler(svc.Ads))
	registerCategoryRoutes(public, admin, handlers.NewCategoryHandler(svc.Categories))
	registerReportRoutes(protected, admin, throttle, handlers.NewReportHandler(svc.Reports))
	registerNotificationRoutes(protected, handlers.NewNotificationHandler(svc.Notifications))
	registerAdminRoutes(admin, adminHandlers{
		Moderation:  handlers.NewModerationHandler(svc.Ads),
		Users:       handlers.NewUserHandler(svc.Users),
		Permissions: handlers.NewPermissionHandler(svc.Permissions),
		Audit:       handlers.NewAuditHandler(svc.Audit),
	})
	registerPermissionRoutes(protected, svc.Audit, handlers.NewPermissionHandler(svc.Permissions))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

// writeThrottle returns the per-client limiter applied to mutating routes, or
// a pass-through handler when throttling is disabled.
func writeThrottle(cfg app.RateLimitConfig) gin.HandlerFunc {
	if cfg.WritePerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.WriteBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.Throttle(cfg.WritePerSecond, burst)
}
