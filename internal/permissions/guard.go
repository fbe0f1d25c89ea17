package permissions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charlesng35/classifieds/internal/models"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

// GrantSet is the set of permission ids explicitly granted to a principal.
type GrantSet map[string]struct{}

// NewGrantSet builds a set from the supplied ids, ignoring blanks.
func NewGrantSet(ids ...string) GrantSet {
	set := make(GrantSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Has reports membership.
func (g GrantSet) Has(id string) bool {
	_, ok := g[id]
	return ok
}

// IDs returns the sorted members.
func (g GrantSet) IDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Principal is the actor an operation is attempted for. The grant set is
// loaded per request and passed explicitly; nothing is read from global state.
type Principal struct {
	ID     string      `json:"id"`
	Role   models.Role `json:"role"`
	Grants GrantSet    `json:"-"`
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return strings.TrimSpace(p.ID) == ""
}

// Authorize returns nil when the principal holds the permission and an error
// matching apperrors.ErrForbidden otherwise. Unknown or malformed permission
// strings are denied for every role.
func Authorize(p Principal, permission string) error {
	id := strings.TrimSpace(permission)
	if _, _, err := Parse(id); err != nil || !Known(id) {
		return forbidden(id)
	}
	if p.Anonymous() {
		return forbidden(id)
	}

	switch p.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
		if p.Grants.Has(id) {
			return nil
		}
	}
	return forbidden(id)
}

// Allowed is the boolean form of Authorize.
func Allowed(p Principal, permission string) bool {
	return Authorize(p, permission) == nil
}

// Effective lists every catalog permission the principal currently holds.
func Effective(p Principal) []string {
	var ids []string
	for _, perm := range All() {
		if Allowed(p, perm.ID) {
			ids = append(ids, perm.ID)
		}
	}
	return ids
}

func forbidden(permission string) error {
	if permission == "" {
		return apperrors.ErrForbidden
	}
	return apperrors.ErrForbidden.WithMessage(fmt.Sprintf("Permission %s required", permission))
}
