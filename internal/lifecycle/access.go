package lifecycle

import (
	"strings"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
)

// Access records which path let a principal act on an ad.
type Access struct {
	Path       models.AccessPath
	Permission string
}

// PermissionUsed returns the permission for admin overrides, nil otherwise.
func (a Access) PermissionUsed() *string {
	if a.Permission == "" {
		return nil
	}
	p := a.Permission
	return &p
}

// ResolveAccess grants the owner path when the principal owns the ad and the
// admin override path when they hold adminPermission instead.
func ResolveAccess(p permissions.Principal, ownerID, adminPermission string) (Access, error) {
	if !p.Anonymous() && strings.TrimSpace(ownerID) != "" && p.ID == ownerID {
		return Access{Path: models.AccessOwner}, nil
	}
	if err := permissions.Authorize(p, adminPermission); err != nil {
		return Access{}, err
	}
	return Access{Path: models.AccessAdmin, Permission: adminPermission}, nil
}

// AdminAccess is the path for permission-gated transitions.
func AdminAccess(permission string) Access {
	return Access{Path: models.AccessAdmin, Permission: permission}
}

// SystemAccess is the path for scheduler driven transitions.
func SystemAccess() Access {
	return Access{Path: models.AccessSystem}
}
