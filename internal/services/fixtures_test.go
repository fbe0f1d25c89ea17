package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/database/testutil"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/crypto"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type serviceFixture struct {
	db            *gorm.DB
	store         cache.Store
	audit         *AuditService
	principals    *PrincipalService
	permissions   *PermissionService
	users         *UserService
	categories    *CategoryService
	notifications *NotificationService
	reports       *ReportService
	ads           *AdService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := &serviceFixture{db: db, store: cache.NewDatabaseStore(db)}

	var err error
	f.audit, err = NewAuditService(db)
	require.NoError(t, err)
	f.principals, err = NewPrincipalService(db, f.store, time.Minute)
	require.NoError(t, err)
	f.permissions, err = NewPermissionService(db, f.audit, f.principals)
	require.NoError(t, err)
	f.users, err = NewUserService(db, f.audit, f.principals)
	require.NoError(t, err)
	f.categories, err = NewCategoryService(db, f.audit)
	require.NoError(t, err)
	f.notifications, err = NewNotificationService(db)
	require.NoError(t, err)
	f.reports, err = NewReportService(db, f.audit)
	require.NoError(t, err)
	f.ads = f.newAdService(t, f.notifications)

	return f
}

func (f *serviceFixture) newAdService(t *testing.T, notifier Notifier) *AdService {
	t.Helper()

	svc, err := NewAdService(f.db, f.audit, f.categories, notifier, f.store, AdServiceConfig{
		ExpiryDays: 30,
		Clock:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc
}

func (f *serviceFixture) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *serviceFixture) grant(t *testing.T, user *models.User, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.db.Create(&models.PermissionGrant{UserID: user.ID, PermissionID: id}).Error)
	}
	f.principals.Invalidate(context.Background(), user.ID)
}

func (f *serviceFixture) principal(t *testing.T, user *models.User) permissions.Principal {
	t.Helper()
	p, err := f.principals.Load(context.Background(), user.ID)
	require.NoError(t, err)
	return p
}

func (f *serviceFixture) categoryID(t *testing.T, slug string) string {
	t.Helper()
	var category models.Category
	require.NoError(t, f.db.First(&category, "slug = ?", slug).Error)
	return category.ID
}

func (f *serviceFixture) createVehicleAd(t *testing.T, owner permissions.Principal) *models.Ad {
	t.Helper()
	ad, err := f.ads.Create(context.Background(), owner, CreateAdInput{
		Title:      "VW Golf 1.4",
		Price:      9500,
		CategoryID: f.categoryID(t, "vehicles"),
		Metadata:   vehiclePayload(),
	})
	require.NoError(t, err)
	return ad
}

func vehiclePayload() map[string]any {
	return map[string]any{
		"vehicleType":  "car",
		"brand":        "VW",
		"model":        "Golf",
		"year":         2018,
		"mileage":      85000,
		"fuelType":     "petrol",
		"transmission": "manual",
		"condition":    "used",
		"damageStatus": "none",
		"postalCode":   "10115",
		"contactName":  "Sam",
		"contactPhone": "+49 30 1234",
	}
}
