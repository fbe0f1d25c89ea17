package models

// CategoryType selects the metadata schema applied to ads in a category tree.
type CategoryType string

const (
	CategoryRealEstate   CategoryType = "REAL_ESTATE"
	CategoryVehicles     CategoryType = "VEHICLES"
	CategoryServices     CategoryType = "SERVICES"
	CategoryJobs         CategoryType = "JOBS"
	CategoryPersonalHome CategoryType = "PERSONAL_HOME"
	CategoryMisc         CategoryType = "MISC"
)

// CategoryTypes lists every declared type in a stable order.
var CategoryTypes = []CategoryType{
	CategoryRealEstate,
	CategoryVehicles,
	CategoryServices,
	CategoryJobs,
	CategoryPersonalHome,
	CategoryMisc,
}

// Valid reports whether the type belongs to the fixed enumeration.
func (t CategoryType) Valid() bool {
	for _, candidate := range CategoryTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// Category is a node in the category tree. Only root categories declare a
// type; children inherit it from the nearest typed ancestor.
type Category struct {
	BaseModel

	Name         string        `gorm:"size:128;not null" json:"name"`
	Slug         string        `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	ParentID     *string       `gorm:"type:varchar(36);index" json:"parent_id"`
	CategoryType *CategoryType `gorm:"type:varchar(32)" json:"category_type,omitempty"`
	SortOrder    int           `gorm:"default:0" json:"sort_order"`

	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
