package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/cache"
	testutil "github.com/charlesng35/classifieds/internal/database/testutil"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/crypto"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	clock := fixedClock{current: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)}

	auditSvc, err := services.NewAuditService(db)
	require.NoError(t, err)
	categories, err := services.NewCategoryService(db, auditSvc)
	require.NoError(t, err)
	store := cache.NewDatabaseStore(db)
	adSvc, err := services.NewAdService(db, auditSvc, categories, nil, store, services.AdServiceConfig{Clock: clock.Now})
	require.NoError(t, err)

	owner := seedUser(t, db, "cleanup-owner")
	stale := seedApprovedAd(t, db, owner.ID, clock.Now().Add(-time.Hour))
	fresh := seedApprovedAd(t, db, owner.ID, clock.Now().Add(24*time.Hour))

	require.NoError(t, auditSvc.Log(context.Background(), services.AuditEntry{
		Action:   "test.action",
		Result:   "success",
		Username: "tester",
	}))
	var auditLog models.AuditLog
	require.NoError(t, db.Where("action = ?", "test.action").First(&auditLog).Error)
	require.NoError(t, db.Model(&auditLog).Update("created_at", time.Now().AddDate(0, 0, -10)).Error)

	c := NewCleaner(adSvc, auditSvc,
		WithNow(clock.Now),
		WithAuditRetentionDays(7),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, c.RunOnce(context.Background()))

	var staleAd models.Ad
	require.NoError(t, db.First(&staleAd, "id = ?", stale.ID).Error)
	require.Equal(t, models.AdStatusExpired, staleAd.Status)
	var freshAd models.Ad
	require.NoError(t, db.First(&freshAd, "id = ?", fresh.ID).Error)
	require.Equal(t, models.AdStatusApproved, freshAd.Status)

	var changes []models.AdStatusChange
	require.NoError(t, db.Where("ad_id = ?", stale.ID).Find(&changes).Error)
	require.Len(t, changes, 1)
	require.Equal(t, models.AccessSystem, changes[0].AccessPath)
	require.Nil(t, changes[0].ActorID)

	require.ErrorIs(t, db.First(&models.AuditLog{}, "id = ?", auditLog.ID).Error, gorm.ErrRecordNotFound)
}

func TestCleanerPurgesExpiredCacheEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale-entry", []byte("x"), time.Minute))
	require.NoError(t, store.Set(ctx, "live-entry", []byte("y"), 48*time.Hour))

	c := NewCleaner(nil, nil,
		WithCachePurger(store),
		WithNow(func() time.Time { return time.Now().Add(time.Hour) }),
	)
	require.NoError(t, c.RunOnce(ctx))

	_, found, err := store.Get(ctx, "live-entry")
	require.NoError(t, err)
	require.True(t, found)

	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Where("key = ?", "stale-entry").Count(&count).Error)
	require.Zero(t, count)
}

func TestCleanerRunOnceAggregatesErrors(t *testing.T) {
	expiryErr := errors.New("expiry failed")
	purgeErr := errors.New("purge failed")

	c := NewCleaner(stubExpirer{err: expiryErr}, nil, WithCachePurger(stubPurger{err: purgeErr}))
	err := c.RunOnce(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, expiryErr)
	require.ErrorIs(t, err, purgeErr)
	require.Len(t, multierr.Errors(err), 2)
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	c := NewCleaner(stubExpirer{}, nil, WithExpirySchedule("not a schedule"))
	require.Error(t, c.Start())
}

func TestCleanerStartWithoutJobs(t *testing.T) {
	c := NewCleaner(nil, nil)
	require.NoError(t, c.Start())
	<-c.Stop().Done()
}

func TestCleanerStartRegistersJobs(t *testing.T) {
	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	c := NewCleaner(stubExpirer{}, stubPruner{}, WithCachePurger(stubPurger{}), WithCron(scheduler))
	require.NoError(t, c.Start())
	t.Cleanup(func() { <-c.Stop().Done() })

	require.Len(t, scheduler.Entries(), 3)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedApprovedAd(t *testing.T, db *gorm.DB, ownerID string, expiresAt time.Time) *models.Ad {
	t.Helper()

	var category models.Category
	require.NoError(t, db.Where("slug = ?", "misc").First(&category).Error)

	approvedAt := expiresAt.AddDate(0, 0, -30)
	expires := expiresAt.UTC()
	ad := &models.Ad{
		Title:      "Garden chairs",
		Price:      25,
		CategoryID: category.ID,
		UserID:     ownerID,
		Status:     models.AdStatusApproved,
		Version:    2,
		ApprovedAt: &approvedAt,
		ExpiresAt:  &expires,
	}
	require.NoError(t, db.Create(ad).Error)
	return ad
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

type stubExpirer struct{ err error }

func (s stubExpirer) ExpireStale(context.Context, time.Time) (int, error) { return 0, s.err }

type stubPruner struct{ err error }

func (s stubPruner) CleanupOlderThan(context.Context, int) (int64, error) { return 0, s.err }

type stubPurger struct{ err error }

func (s stubPurger) PurgeExpired(context.Context, time.Time) (int64, error) { return 0, s.err }
