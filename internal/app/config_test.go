package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.True(t, cfg.Server.HSTS)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, 3306, cfg.Database.MySQL.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, 30*time.Second, cfg.Cache.PrincipalTTL)
	require.Equal(t, 5*time.Minute, cfg.Cache.AdTTL)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "classifieds-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, 14, cfg.Moderation.ExpiryDays)
	require.Equal(t, "@every 30m", cfg.Moderation.ExpirySchedule)
	require.Equal(t, 30, cfg.Moderation.AuditRetentionDays)
	require.Equal(t, "@daily", cfg.Moderation.AuditSchedule)

	require.Equal(t, 50, cfg.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	require.InDelta(t, 0.5, cfg.RateLimit.WritePerSecond, 1e-9)
	require.Equal(t, 3, cfg.RateLimit.WriteBurst)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, time.Minute, cfg.Cache.PrincipalTTL)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 30, cfg.Moderation.ExpiryDays)
	require.Equal(t, "@hourly", cfg.Moderation.ExpirySchedule)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("CLASSIFIEDS_SERVER_PORT", "7070")
	t.Setenv("CLASSIFIEDS_MODERATION_EXPIRY_DAYS", "7")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 7, cfg.Moderation.ExpiryDays)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := AuthConfig{
		JWT: JWTSettings{Secret: "secret", Issuer: "issuer"},
	}

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, "secret", jwtCfg.Secret)
	require.Equal(t, "issuer", jwtCfg.Issuer)
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)

	_, ok := cfg.SuperAdminInput()
	require.False(t, ok)

	cfg.SuperAdmin = SuperAdminSettings{Username: " root ", Email: "root@example.com", Password: "change-me-please"}
	input, ok := cfg.SuperAdminInput()
	require.True(t, ok)
	require.Equal(t, "root", input.Username)
	require.Equal(t, "root@example.com", input.Email)
}

func TestCacheConfigAdapter(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{Address: " localhost:6379 ", DB: 3, Timeout: time.Second}}
	redisCfg := cfg.RedisClientConfig()
	require.Equal(t, "localhost:6379", redisCfg.Address)
	require.Equal(t, 3, redisCfg.DB)
	require.Equal(t, time.Second, redisCfg.Timeout)
}
