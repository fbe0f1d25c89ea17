package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/classifieds/pkg/crypto"
)

const (
	jwtSecretBytes         = 48
	fallbackExpiryDays     = 30
	fallbackPrincipalTTL   = time.Minute
	fallbackAccessTokenTTL = time.Hour
)

// ApplyRuntimeDefaults fills settings the server cannot run without. A
// missing signing secret is generated, which invalidates every token on the
// next restart. Non-positive lifetimes fall back to their defaults. The
// returned map names the keys that were filled so callers can log them
// without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	applied := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		applied["auth.jwt.secret"] = true
	}
	if cfg.Auth.JWT.TTL <= 0 {
		cfg.Auth.JWT.TTL = fallbackAccessTokenTTL
		applied["auth.jwt.access_token_ttl"] = true
	}
	if cfg.Moderation.ExpiryDays <= 0 {
		cfg.Moderation.ExpiryDays = fallbackExpiryDays
		applied["moderation.expiry_days"] = true
	}
	if cfg.Cache.PrincipalTTL <= 0 {
		cfg.Cache.PrincipalTTL = fallbackPrincipalTTL
		applied["cache.principal_ttl"] = true
	}

	return applied, nil
}
