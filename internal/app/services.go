package app

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/services"
)

// Services bundles the domain services shared by the router and the
// maintenance jobs.
type Services struct {
	Audit         *services.AuditService
	Principals    *services.PrincipalService
	Users         *services.UserService
	Permissions   *services.PermissionService
	Categories    *services.CategoryService
	Notifications *services.NotificationService
	Ads           *services.AdService
	Reports       *services.ReportService
}

// NewServices wires every domain service against db. store may be nil, in
// which case nothing is cached.
func NewServices(db *gorm.DB, store cache.Store, cfg *Config) (*Services, error) {
	if db == nil {
		return nil, errors.New("services: db is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	var (
		svc Services
		err error
	)

	if svc.Audit, err = services.NewAuditService(db); err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}
	if svc.Principals, err = services.NewPrincipalService(db, store, cfg.Cache.PrincipalTTL); err != nil {
		return nil, fmt.Errorf("initialise principal service: %w", err)
	}
	if svc.Users, err = services.NewUserService(db, svc.Audit, svc.Principals); err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}
	if svc.Permissions, err = services.NewPermissionService(db, svc.Audit, svc.Principals); err != nil {
		return nil, fmt.Errorf("initialise permission service: %w", err)
	}
	if svc.Categories, err = services.NewCategoryService(db, svc.Audit); err != nil {
		return nil, fmt.Errorf("initialise category service: %w", err)
	}
	if svc.Notifications, err = services.NewNotificationService(db); err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}
	svc.Ads, err = services.NewAdService(db, svc.Audit, svc.Categories, svc.Notifications, store, cfg.AdServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise ad service: %w", err)
	}
	if svc.Reports, err = services.NewReportService(db, svc.Audit); err != nil {
		return nil, fmt.Errorf("initialise report service: %w", err)
	}

	return &svc, nil
}
