package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/models"
)

type rootCategory struct {
	Name string
	Slug string
	Type models.CategoryType
}

func defaultRootCategories() []rootCategory {
	return []rootCategory{
		{Name: "Real Estate", Slug: "real-estate", Type: models.CategoryRealEstate},
		{Name: "Vehicles", Slug: "vehicles", Type: models.CategoryVehicles},
		{Name: "Services", Slug: "services", Type: models.CategoryServices},
		{Name: "Jobs", Slug: "jobs", Type: models.CategoryJobs},
		{Name: "Home & Personal", Slug: "home-personal", Type: models.CategoryPersonalHome},
		{Name: "Miscellaneous", Slug: "misc", Type: models.CategoryMisc},
	}
}

// seedRootCategories creates missing roots by slug and leaves existing rows
// untouched so operators can rename them.
func seedRootCategories(db *gorm.DB, roots []rootCategory) error {
	for i, root := range roots {
		categoryType := root.Type
		record := models.Category{
			Name:         root.Name,
			Slug:         root.Slug,
			CategoryType: &categoryType,
			SortOrder:    i,
		}
		if err := db.Where(models.Category{Slug: root.Slug}).Attrs(record).FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}
	return nil
}
