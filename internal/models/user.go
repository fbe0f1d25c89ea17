package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is the coarse privilege tier of a principal.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalises user supplied role names.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	return role, role.Valid()
}

// User is an authenticated marketplace principal. ADMIN users receive
// individual permission grants; SUPER_ADMIN implicitly holds every permission.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Phone    string `gorm:"size:32" json:"phone,omitempty"`

	Role     Role `gorm:"type:varchar(16);not null;default:USER;index" json:"role"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	Grants []PermissionGrant `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time     `json:"last_login_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
