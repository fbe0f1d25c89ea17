package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/classifieds/internal/models"
)

var errStoreClosed = errors.New("cache: database store not initialised")

// DatabaseStore keeps cache entries in the primary SQL database. It is the
// fallback when Redis is absent, so entries survive restarts and are shared
// by every instance pointed at the same database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore returns a store on db, or nil when db is nil.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

func (s *DatabaseStore) session(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, errStoreClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx), nil
}

// IncrementWithTTL bumps a fixed-window counter. The window starts with the
// first hit and is not extended by later ones, matching the Redis store.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, 0, err
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()
	var (
		count     int64
		expiresAt time.Time
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		lookup := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&entry, "key = ?", key)
		switch {
		case errors.Is(lookup.Error, gorm.ErrRecordNotFound):
			count, expiresAt = 1, now.Add(window)
			return tx.Create(&models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: expiresAt,
			}).Error
		case lookup.Error != nil:
			return lookup.Error
		}

		if entry.ExpiresAt.IsZero() || entry.Expired(now) {
			count, expiresAt = 1, now.Add(window)
		} else {
			previous, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count, expiresAt = previous+1, entry.ExpiresAt
		}
		return tx.Model(&entry).Updates(map[string]any{
			"value":      []byte(strconv.FormatInt(count, 10)),
			"expires_at": expiresAt,
		}).Error
	})
	if err != nil {
		return 0, 0, fmt.Errorf("cache: increment %q: %w", key, err)
	}
	return count, expiresAt.Sub(now), nil
}

// Set upserts a value. A ttl of zero or less keeps it until deleted.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	db, err := s.session(ctx)
	if err != nil {
		return err
	}

	entry := models.CacheEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Get returns the value of a live entry. Stale entries read as a miss and are
// removed on the way out.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.session(ctx)
	if err != nil {
		return nil, false, err
	}

	var entry models.CacheEntry
	if err := db.Take(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if entry.Expired(s.now()) {
		_ = db.Where("key = ?", key).Delete(&models.CacheEntry{}).Error
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Delete removes the given keys; unknown keys are ignored.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	db, err := s.session(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return db.Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// PurgeExpired deletes entries that expired before now and returns the count.
// Entries without an expiry are kept.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Where("expires_at > ? AND expires_at < ?", time.Time{}, now).Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}
