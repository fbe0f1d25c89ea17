package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/classifieds/internal/models"
)

// Sync mirrors the catalog into the permissions table in one transaction.
// Entries dropped from the catalog are removed together with every grant
// that still references them, so a retired permission cannot linger in a
// grant set.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	catalog := All()
	ids := make([]string, 0, len(catalog))
	records := make([]models.Permission, 0, len(catalog))
	for _, perm := range catalog {
		ids = append(ids, perm.ID)
		records = append(records, models.Permission{
			ID:          perm.ID,
			Resource:    perm.Resource,
			Action:      perm.Action,
			Description: perm.Description,
		})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"resource", "action", "description"}),
			}).Create(&records).Error; err != nil {
				return fmt.Errorf("permission: sync catalog: %w", err)
			}
		}

		stale := tx.Model(&models.Permission{})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		var retired []string
		if err := stale.Pluck("id", &retired).Error; err != nil {
			return fmt.Errorf("permission: find retired: %w", err)
		}
		if len(retired) == 0 {
			return nil
		}

		if tx.Migrator().HasTable(&models.PermissionGrant{}) {
			if err := tx.Where("permission_id IN ?", retired).Delete(&models.PermissionGrant{}).Error; err != nil {
				return fmt.Errorf("permission: drop retired grants: %w", err)
			}
		}
		if err := tx.Where("id IN ?", retired).Delete(&models.Permission{}).Error; err != nil {
			return fmt.Errorf("permission: drop retired: %w", err)
		}
		return nil
	})
}
