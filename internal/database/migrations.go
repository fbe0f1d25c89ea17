package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.PermissionGrant{},
		&models.Category{},
		&models.Ad{},
		&models.AdStatusChange{},
		&models.Report{},
		&models.Notification{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// SeedData persists the permission catalog and the root category tree.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}
	return seedRootCategories(db, defaultRootCategories())
}
