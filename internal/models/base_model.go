package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the UUID key and timestamps shared by mutable records.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// assignID fills an empty primary key with a random UUID. Callers may preset
// the key, for example to reference a row before it is written.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
