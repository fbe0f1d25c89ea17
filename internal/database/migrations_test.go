package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/models"
)

func TestAutoMigrateCreatesModerationTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	tables := []interface{}{
		&models.User{},
		&models.PermissionGrant{},
		&models.Category{},
		&models.Ad{},
		&models.AdStatusChange{},
		&models.Report{},
		&models.Notification{},
		&models.AuditLog{},
		&models.CacheEntry{},
	}

	for _, table := range tables {
		require.True(t, migrator.HasTable(table), "expected table for %T to exist", table)
	}
	require.True(t, migrator.HasColumn(&models.Ad{}, "version"))
	require.True(t, migrator.HasIndex(&models.PermissionGrant{}, "idx_grant_user_permission"))
}

func TestSeedRootCategoriesKeepsExistingRows(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	renamed := models.CategoryVehicles
	require.NoError(t, db.Create(&models.Category{Name: "Cars & Bikes", Slug: "vehicles", CategoryType: &renamed}).Error)

	require.NoError(t, seedRootCategories(db, defaultRootCategories()))

	var vehicles models.Category
	require.NoError(t, db.First(&vehicles, "slug = ?", "vehicles").Error)
	require.Equal(t, "Cars & Bikes", vehicles.Name)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	require.EqualValues(t, 6, count)
}
