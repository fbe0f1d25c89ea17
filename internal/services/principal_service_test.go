package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

func TestPrincipalServiceLoadsGrants(t *testing.T) {
	f := newServiceFixture(t)
	admin := f.createUser(t, "moderator", models.RoleAdmin)
	f.grant(t, admin, permissions.AdsApprove)

	p := f.principal(t, admin)
	require.Equal(t, admin.ID, p.ID)
	require.Equal(t, models.RoleAdmin, p.Role)
	require.Equal(t, []string{permissions.AdsApprove}, p.Grants.IDs())

	hit, err := cache.GetJSON(context.Background(), f.store, cache.PrincipalKey(admin.ID), &cachedPrincipal{})
	require.NoError(t, err)
	require.True(t, hit)
}

func TestPrincipalServiceIgnoresGrantsOfUsers(t *testing.T) {
	f := newServiceFixture(t)
	member := f.createUser(t, "member", models.RoleUser)
	// a stale row left behind must never take effect
	require.NoError(t, f.db.Create(&models.PermissionGrant{UserID: member.ID, PermissionID: permissions.AdsApprove}).Error)

	p := f.principal(t, member)
	require.Empty(t, p.Grants)
	require.False(t, permissions.Allowed(p, permissions.AdsApprove))
}

func TestPrincipalServiceRejectsInactiveAndMissing(t *testing.T) {
	f := newServiceFixture(t)
	member := f.createUser(t, "member", models.RoleUser)
	require.NoError(t, f.db.Model(member).Update("is_active", false).Error)

	_, err := f.principals.Load(context.Background(), member.ID)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.principals.Load(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.principals.Load(context.Background(), " ")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPrincipalServiceWithoutCache(t *testing.T) {
	f := newServiceFixture(t)
	svc, err := NewPrincipalService(f.db, nil, 0)
	require.NoError(t, err)

	root := f.createUser(t, "root", models.RoleSuperAdmin)
	p, err := svc.Load(context.Background(), root.ID)
	require.NoError(t, err)
	require.True(t, permissions.Allowed(p, permissions.AuditView))
	svc.Invalidate(context.Background(), root.ID)
}

// racingStore runs hook once, right before the first principal entry is written.
type racingStore struct {
	cache.Store
	hook  func()
	fired bool
}

func (s *racingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.fired && strings.HasPrefix(key, cache.PrincipalKey("")) {
		s.fired = true
		s.hook()
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func TestPrincipalServiceRevokeDuringLoadIsNotServedFromCache(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	root := f.principal(t, f.createUser(t, "root", models.RoleSuperAdmin))
	admin := f.createUser(t, "moderator", models.RoleAdmin)
	f.grant(t, admin, permissions.AdsApprove)

	store := &racingStore{Store: f.store}
	principals, err := NewPrincipalService(f.db, store, time.Minute)
	require.NoError(t, err)
	grants, err := NewPermissionService(f.db, f.audit, principals)
	require.NoError(t, err)
	store.hook = func() {
		require.NoError(t, grants.Revoke(ctx, root, admin.ID, permissions.AdsApprove))
	}

	// the load read the grant before the revoke committed
	stale, err := principals.Load(ctx, admin.ID)
	require.NoError(t, err)
	require.True(t, store.fired)
	require.True(t, permissions.Allowed(stale, permissions.AdsApprove))

	var rows int64
	require.NoError(t, f.db.Model(&models.PermissionGrant{}).Where("user_id = ?", admin.ID).Count(&rows).Error)
	require.Zero(t, rows)

	next, err := principals.Load(ctx, admin.ID)
	require.NoError(t, err)
	require.False(t, permissions.Allowed(next, permissions.AdsApprove))
}

func TestPrincipalServiceInvalidateBumpsGeneration(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "moderator", models.RoleAdmin)

	f.principal(t, admin)
	f.principals.Invalidate(ctx, admin.ID)
	f.principals.Invalidate(ctx, admin.ID)

	generation, ok := f.principals.generation(ctx, admin.ID)
	require.True(t, ok)
	require.EqualValues(t, 2, generation)

	var cached cachedPrincipal
	hit, err := cache.GetJSON(ctx, f.store, cache.PrincipalKey(admin.ID), &cached)
	require.NoError(t, err)
	require.False(t, hit)

	f.principal(t, admin)
	hit, err = cache.GetJSON(ctx, f.store, cache.PrincipalKey(admin.ID), &cached)
	require.NoError(t, err)
	require.True(t, hit)
	require.EqualValues(t, 2, cached.Generation)
}
