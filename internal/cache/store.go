package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store represents a shared cache interface used across the application.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Key namespaces.
const (
	principalPrefix    = "principal:"
	principalGenPrefix = "principal-gen:"
	adPrefix           = "ad:"
)

// PrincipalKey addresses the cached grant set of a user.
func PrincipalKey(userID string) string { return principalPrefix + userID }

// PrincipalGenerationKey addresses the counter bumped on every grant, role or
// activation change of a user.
func PrincipalGenerationKey(userID string) string { return principalGenPrefix + userID }

// AdKey addresses the cached public payload of an ad.
func AdKey(adID string) string { return adPrefix + adID }

// GetJSON loads and decodes a cached value. A nil store is always a miss.
func GetJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	if store == nil {
		return false, nil
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// treat undecodable entries as a miss and drop them
		_ = store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes and stores a value. A nil store is a no-op.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	if store == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw, ttl)
}

// Evict deletes keys, ignoring a nil store.
func Evict(ctx context.Context, store Store, keys ...string) error {
	if store == nil || len(keys) == 0 {
		return nil
	}
	return store.Delete(ctx, keys...)
}
