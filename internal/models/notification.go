package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app message addressed to one user, such as the
// rejection notice sent to an ad owner.
type Notification struct {
	BaseModel

	UserID   string            `gorm:"type:varchar(36);not null;index:idx_notifications_inbox,priority:1" json:"user_id"`
	Type     string            `gorm:"type:varchar(64);not null" json:"type"`
	Title    string            `gorm:"type:varchar(255);not null" json:"title"`
	Message  string            `gorm:"type:text" json:"message"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notifications_inbox,priority:2" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
