package models

// Permission mirrors a catalog entry from the permissions registry. Rows are
// seeded at startup and never mutated by runtime actors.
type Permission struct {
	ID          string `gorm:"primaryKey;size:128" json:"id"`
	Resource    string `gorm:"size:64;not null;index" json:"resource"`
	Action      string `gorm:"size:64;not null" json:"action"`
	Description string `json:"description"`
}

// PermissionGrant associates an ADMIN principal with one permission.
type PermissionGrant struct {
	BaseModel

	UserID       string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_grant_user_permission,priority:1" json:"user_id"`
	PermissionID string  `gorm:"size:128;not null;uniqueIndex:idx_grant_user_permission,priority:2;index" json:"permission_id"`
	GrantedByID  *string `gorm:"type:varchar(36);index" json:"granted_by_id"`

	Permission *Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}
