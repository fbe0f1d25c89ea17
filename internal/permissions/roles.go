package permissions

import "github.com/charlesng35/classifieds/internal/models"

// HasDefault reports whether the role holds the permission without any grant
// record. Only SUPER_ADMIN has defaults; unknown permissions are never held.
func HasDefault(role models.Role, permission string) bool {
	if !Known(permission) {
		return false
	}
	return role == models.RoleSuperAdmin
}
