package models

import (
	"time"

	"gorm.io/gorm"
)

// AccessPath records how an actor was entitled to mutate an ad.
type AccessPath string

const (
	AccessOwner  AccessPath = "owner"
	AccessAdmin  AccessPath = "admin"
	AccessSystem AccessPath = "system"
)

// AdStatusChange is the moderation history of an ad. Edits and deletes are
// recorded too, with FromStatus equal to ToStatus for edits.
type AdStatusChange struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AdID           string     `gorm:"type:varchar(36);not null;index" json:"ad_id"`
	Action         string     `gorm:"size:32;not null;index" json:"action"`
	FromStatus     AdStatus   `gorm:"type:varchar(32);not null" json:"from_status"`
	ToStatus       AdStatus   `gorm:"type:varchar(32);not null" json:"to_status"`
	ActorID        *string    `gorm:"type:varchar(36);index" json:"actor_id"`
	ActorRole      string     `gorm:"size:16;not null" json:"actor_role"`
	AccessPath     AccessPath `gorm:"size:16;not null" json:"access_path"`
	PermissionUsed *string    `gorm:"size:128" json:"permission_used"`
	Reason         *string    `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (c *AdStatusChange) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
