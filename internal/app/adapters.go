package app

import (
	"strings"

	"github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/services"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the token service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// SuperAdminInput returns the bootstrap account, or false when it is not fully configured.
func (c AuthConfig) SuperAdminInput() (services.RegisterUserInput, bool) {
	input := services.RegisterUserInput{
		Username: strings.TrimSpace(c.SuperAdmin.Username),
		Email:    strings.TrimSpace(c.SuperAdmin.Email),
		Password: c.SuperAdmin.Password,
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return services.RegisterUserInput{}, false
	}
	return input, true
}

// RedisClientConfig returns the connection settings for the shared cache.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// AdServiceConfig combines the moderation lifetime with the ad cache TTL.
func (c *Config) AdServiceConfig() services.AdServiceConfig {
	return services.AdServiceConfig{
		ExpiryDays: c.Moderation.ExpiryDays,
		CacheTTL:   c.Cache.AdTTL,
	}
}
