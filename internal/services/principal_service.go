package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/logger"
)

const (
	defaultPrincipalTTL = 30 * time.Second
	// generations must outlive any cached principal by a wide margin
	principalGenerationWindow = 24 * time.Hour
)

type cachedPrincipal struct {
	ID         string      `json:"id"`
	Role       models.Role `json:"role"`
	Grants     []string    `json:"grants"`
	IsActive   bool        `json:"is_active"`
	Generation int64       `json:"generation"`
}

// PrincipalService builds the per-request Principal including its grant set.
// Entries are cached briefly and tagged with the user's grant generation.
// Every grant, role or activation change bumps the generation and evicts the
// entry, so a load that raced the change cannot serve the old grant set.
type PrincipalService struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
}

// NewPrincipalService constructs a PrincipalService. The cache store is optional.
func NewPrincipalService(db *gorm.DB, store cache.Store, ttl time.Duration) (*PrincipalService, error) {
	if db == nil {
		return nil, errors.New("principal service: db is required")
	}
	if ttl <= 0 {
		ttl = defaultPrincipalTTL
	}
	return &PrincipalService{db: db, cache: store, ttl: ttl}, nil
}

// Load returns the principal for the user. Missing, deleted or inactive users
// yield ErrUnauthorized.
func (s *PrincipalService) Load(ctx context.Context, userID string) (permissions.Principal, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return permissions.Principal{}, apperrors.ErrUnauthorized
	}

	generation, cacheable := s.generation(ctx, userID)

	var cached cachedPrincipal
	if cacheable {
		ok, _ := cache.GetJSON(ctx, s.cache, cache.PrincipalKey(userID), &cached)
		if ok && cached.Generation == generation {
			return toPrincipal(cached)
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "role", "is_active").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissions.Principal{}, apperrors.ErrUnauthorized
		}
		return permissions.Principal{}, fmt.Errorf("principal service: load user: %w", err)
	}

	cached = cachedPrincipal{ID: user.ID, Role: user.Role, IsActive: user.IsActive, Generation: generation}
	if user.Role == models.RoleAdmin {
		if err := s.db.WithContext(ctx).
			Model(&models.PermissionGrant{}).
			Where("user_id = ?", user.ID).
			Order("permission_id").
			Pluck("permission_id", &cached.Grants).Error; err != nil {
			return permissions.Principal{}, fmt.Errorf("principal service: load grants: %w", err)
		}
	}

	if cacheable {
		_ = cache.SetJSON(ctx, s.cache, cache.PrincipalKey(userID), cached, s.ttl)
	}

	return toPrincipal(cached)
}

// Invalidate bumps the user's grant generation and evicts the cached principal.
// Callers invoke it after the change is committed.
func (s *PrincipalService) Invalidate(ctx context.Context, userID string) {
	if s == nil || s.cache == nil {
		return
	}
	ctx = ensureContext(ctx)
	if _, _, err := s.cache.IncrementWithTTL(ctx, cache.PrincipalGenerationKey(userID), principalGenerationWindow); err != nil {
		logger.FromContext(ctx, logger.WithModule("principals")).Warn("bump grant generation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	_ = cache.Evict(ctx, s.cache, cache.PrincipalKey(userID))
}

// generation reads the current grant generation. A store that cannot be read
// disables caching for the call.
func (s *PrincipalService) generation(ctx context.Context, userID string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, ok, err := s.cache.Get(ctx, cache.PrincipalGenerationKey(userID))
	if err != nil {
		return 0, false
	}
	if !ok {
		return 0, true
	}
	value, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func toPrincipal(cached cachedPrincipal) (permissions.Principal, error) {
	if !cached.IsActive {
		return permissions.Principal{}, apperrors.ErrUnauthorized.WithMessage("Account is disabled")
	}
	principal := permissions.Principal{ID: cached.ID, Role: cached.Role}
	if cached.Role == models.RoleAdmin {
		principal.Grants = permissions.NewGrantSet(cached.Grants...)
	}
	return principal, nil
}
