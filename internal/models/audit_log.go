package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of a security or administration event.
// Rows are never updated, so only the creation time is tracked.
type AuditLog struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    *string           `gorm:"type:varchar(36);index" json:"user_id"`
	Username  string            `gorm:"type:varchar(64)" json:"username"`
	Action    string            `gorm:"type:varchar(64);not null;index" json:"action"`
	Resource  string            `gorm:"type:varchar(128);index" json:"resource"`
	Result    string            `gorm:"type:varchar(16);not null;index" json:"result"`
	IPAddress string            `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string            `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
