package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

func TestResolveAccessOwner(t *testing.T) {
	owner := permissions.Principal{ID: "u1", Role: models.RoleUser}

	access, err := ResolveAccess(owner, "u1", permissions.AdsEdit)
	require.NoError(t, err)
	require.Equal(t, models.AccessOwner, access.Path)
	require.Nil(t, access.PermissionUsed())
}

func TestResolveAccessAdminOverride(t *testing.T) {
	admin := permissions.Principal{ID: "a1", Role: models.RoleAdmin, Grants: permissions.NewGrantSet(permissions.AdsDelete)}

	access, err := ResolveAccess(admin, "u1", permissions.AdsDelete)
	require.NoError(t, err)
	require.Equal(t, models.AccessAdmin, access.Path)
	require.Equal(t, permissions.AdsDelete, *access.PermissionUsed())

	_, err = ResolveAccess(admin, "u1", permissions.AdsEdit)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestResolveAccessStranger(t *testing.T) {
	stranger := permissions.Principal{ID: "u2", Role: models.RoleUser}
	_, err := ResolveAccess(stranger, "u1", permissions.AdsEdit)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = ResolveAccess(permissions.Principal{}, "", permissions.AdsEdit)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSystemAccess(t *testing.T) {
	require.Equal(t, models.AccessSystem, SystemAccess().Path)
	require.Equal(t, permissions.AdsApprove, AdminAccess(permissions.AdsApprove).Permission)
}
