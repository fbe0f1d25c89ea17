package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdStatus is the moderation state of an advertisement.
type AdStatus string

const (
	// AdStatusDraft exists for compatibility; no flow currently produces it.
	AdStatusDraft           AdStatus = "DRAFT"
	AdStatusPendingApproval AdStatus = "PENDING_APPROVAL"
	AdStatusApproved        AdStatus = "APPROVED"
	AdStatusRejected        AdStatus = "REJECTED"
	AdStatusSuspended       AdStatus = "SUSPENDED"
	AdStatusExpired         AdStatus = "EXPIRED"
)

// Valid reports whether the status belongs to the enumeration.
func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusDraft, AdStatusPendingApproval, AdStatusApproved,
		AdStatusRejected, AdStatusSuspended, AdStatusExpired:
		return true
	default:
		return false
	}
}

// Ad is a classified advertisement. Metadata holds the category specific
// attribute bag; Version increments on every status change.
type Ad struct {
	BaseModel

	Title       string  `gorm:"size:200;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null;default:0" json:"price"`

	CategoryID string    `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CityID     *string   `gorm:"type:varchar(36);index" json:"city_id"`
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`

	Status          AdStatus       `gorm:"type:varchar(32);not null;index" json:"status"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	Metadata        datatypes.JSON `json:"metadata"`
	Condition       string         `gorm:"size:16" json:"condition,omitempty"`

	Views     int64 `gorm:"default:0" json:"views"`
	IsPremium bool  `gorm:"default:false" json:"is_premium"`
	ShowEmail bool  `gorm:"default:false" json:"show_email"`
	ShowPhone bool  `gorm:"default:false" json:"show_phone"`

	Version    int64          `gorm:"not null;default:1" json:"version"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	ExpiresAt  *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
