package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/auditctx"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

func TestAuditServiceLogAndList(t *testing.T) {
	f := newServiceFixture(t)
	root := f.createUser(t, "root", models.RoleSuperAdmin)

	ctx := context.Background()
	err := f.audit.Log(ctx, AuditEntry{
		UserID:   &root.ID,
		Username: "root",
		Action:   "user.create",
		Resource: "users",
		Result:   "success",
		Metadata: map[string]any{"email": root.Email},
	})
	require.NoError(t, err)

	logs, total, err := f.audit.List(ctx, f.principal(t, root), AuditListOptions{
		Page:     1,
		PageSize: 10,
		Filters:  AuditFilters{Action: "user.create"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	require.Equal(t, root.ID, *logs[0].UserID)
	require.Equal(t, root.Email, logs[0].Metadata["email"])
}

func TestAuditServiceUsesRequestOrigin(t *testing.T) {
	f := newServiceFixture(t)
	root := f.createUser(t, "root", models.RoleSuperAdmin)

	ctx := auditctx.WithOrigin(context.Background(), auditctx.Origin{IPAddress: "198.51.100.4", UserAgent: "moderation-ui/2.1"})
	require.NoError(t, f.audit.Log(ctx, AuditEntry{UserID: &root.ID, Action: "ad.approve", Result: "success"}))
	require.NoError(t, f.audit.Log(ctx, AuditEntry{UserID: &root.ID, Action: "ad.reject", Result: "success", IPAddress: "10.0.0.1"}))

	var logs []models.AuditLog
	require.NoError(t, f.db.Order("action").Find(&logs).Error)
	require.Len(t, logs, 2)
	require.Equal(t, "198.51.100.4", logs[0].IPAddress)
	require.Equal(t, "10.0.0.1", logs[1].IPAddress)
	require.Equal(t, "moderation-ui/2.1", logs[0].UserAgent)
}

func TestAuditServiceRequiresPermission(t *testing.T) {
	f := newServiceFixture(t)
	admin := f.createUser(t, "moderator", models.RoleAdmin)

	_, _, err := f.audit.List(context.Background(), f.principal(t, admin), AuditListOptions{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	f.grant(t, admin, permissions.AuditView)
	_, _, err = f.audit.List(context.Background(), f.principal(t, admin), AuditListOptions{})
	require.NoError(t, err)
}

func TestAuditServiceRecordsDenials(t *testing.T) {
	f := newServiceFixture(t)
	user := f.createUser(t, "member", models.RoleUser)

	_, _, err := f.audit.List(context.Background(), f.principal(t, user), AuditListOptions{})
	require.Error(t, err)

	var denied models.AuditLog
	require.NoError(t, f.db.First(&denied, "action = ?", "permission.denied").Error)
	require.Equal(t, "denied", denied.Result)
	require.Equal(t, permissions.AuditView, denied.Metadata["permission"])
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	f := newServiceFixture(t)

	oldLog := models.AuditLog{
		Action:    "old.action",
		Result:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, f.db.Create(&oldLog).Error)
	require.NoError(t, f.audit.Log(context.Background(), AuditEntry{Action: "new.action", Result: "success"}))

	rows, err := f.audit.CleanupOlderThan(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
}
