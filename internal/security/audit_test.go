package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/app"
	testutil "github.com/charlesng35/classifieds/internal/database/testutil"
	"github.com/charlesng35/classifieds/internal/models"
)

func statusOf(t *testing.T, result Result, id string) CheckStatus {
	t.Helper()
	for _, check := range result.Checks {
		if check.ID == id {
			return check.Status
		}
	}
	t.Fatalf("check %s not found", id)
	return ""
}

func TestPostureAuditRun(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	require.NoError(t, db.Create(&models.User{
		Username: "root",
		Email:    "root@example.com",
		Password: "hashed",
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}).Error)

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "0123456789abcdef0123456789abcdef0123456789abcdef"
	cfg.Auth.JWT.TTL = time.Hour
	cfg.Cache.PrincipalTTL = time.Minute
	cfg.RateLimit.Requests = 300
	cfg.RateLimit.Window = time.Minute

	audit := NewPostureAudit(db, cfg)
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	audit.WithClock(func() time.Time { return fixed })

	result := audit.Run(context.Background())
	require.Equal(t, fixed, result.CheckedAt)
	require.Len(t, result.Checks, 5)
	require.Equal(t, 5, result.Summary[string(StatusPass)])
}

func TestPostureAuditFindings(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "short"
	cfg.Auth.JWT.TTL = 7 * 24 * time.Hour
	cfg.Cache.PrincipalTTL = time.Hour

	result := NewPostureAudit(db, cfg).Run(context.Background())
	require.Equal(t, StatusFail, statusOf(t, result, checkSuperAdmin))
	require.Equal(t, StatusFail, statusOf(t, result, checkJWTSecret))
	require.Equal(t, StatusWarn, statusOf(t, result, checkAccessTokenTTL))
	require.Equal(t, StatusWarn, statusOf(t, result, checkPrincipalCacheTTL))
	require.Equal(t, StatusWarn, statusOf(t, result, checkRateLimit))

	require.NotPanics(t, func() { LogFindings(result) })
}

func TestPostureAuditWithoutDependencies(t *testing.T) {
	result := NewPostureAudit(nil, nil).Run(context.Background())
	require.Len(t, result.Checks, 2)
	require.Equal(t, 2, result.Summary[string(StatusWarn)])
}
