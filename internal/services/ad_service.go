package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/lifecycle"
	"github.com/charlesng35/classifieds/internal/metadata"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/logger"
	"github.com/charlesng35/classifieds/pkg/metrics"
)

const (
	defaultExpiryDays = 30
	defaultAdCacheTTL = 5 * time.Minute
	maxTitleLength    = 200
	systemActorRole   = "SYSTEM"
)

// ErrAdNotFound indicates the ad does not exist or is not visible to the caller.
var ErrAdNotFound = apperrors.New("AD_NOT_FOUND", apperrors.KindNotFound, "Ad not found", http.StatusNotFound)

// AdServiceConfig tunes moderation behaviour.
type AdServiceConfig struct {
	// ExpiryDays is how long an approved ad stays public.
	ExpiryDays int
	CacheTTL   time.Duration
	Clock      func() time.Time
}

// CreateAdInput describes a new ad submitted by its owner.
type CreateAdInput struct {
	Title       string
	Description string
	Price       float64
	CategoryID  string
	CityID      *string
	Condition   string
	Metadata    map[string]any
	IsPremium   bool
	ShowEmail   bool
	ShowPhone   bool
}

// UpdateAdInput carries content changes. Nil fields are left untouched.
type UpdateAdInput struct {
	Title       *string
	Description *string
	Price       *float64
	CityID      *string
	Condition   *string
	Metadata    map[string]any
	ShowEmail   *bool
	ShowPhone   *bool
	// Version, when set, must match the stored version.
	Version *int64
}

// AdFilters narrows ad listings.
type AdFilters struct {
	CategoryID string
	CityID     string
	Query      string
	Status     models.AdStatus
	MinPrice   *float64
	MaxPrice   *float64
}

// ListAdsOptions controls pagination for ad listings.
type ListAdsOptions struct {
	Page     int
	PageSize int
	Filters  AdFilters
}

// AdService owns the ad lifecycle: content, moderation transitions and the
// public catalogue.
type AdService struct {
	db           *gorm.DB
	auditService *AuditService
	categories   *CategoryService
	notifier     Notifier
	cache        cache.Store
	cfg          AdServiceConfig
}

// NewAdService constructs an AdService. The notifier and cache are optional.
func NewAdService(db *gorm.DB, audit *AuditService, categories *CategoryService, notifier Notifier, store cache.Store, cfg AdServiceConfig) (*AdService, error) {
	if db == nil {
		return nil, errors.New("ad service: db is required")
	}
	if categories == nil {
		return nil, errors.New("ad service: category service is required")
	}
	if cfg.ExpiryDays <= 0 {
		cfg.ExpiryDays = defaultExpiryDays
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultAdCacheTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &AdService{
		db:           db,
		auditService: audit,
		categories:   categories,
		notifier:     notifier,
		cache:        store,
		cfg:          cfg,
	}, nil
}

func (s *AdService) now() time.Time {
	return s.cfg.Clock().UTC()
}

// Create submits a new ad for moderation. The ad starts in PENDING_APPROVAL.
func (s *AdService) Create(ctx context.Context, actor permissions.Principal, input CreateAdInput) (*models.Ad, error) {
	ctx = ensureContext(ctx)

	if actor.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	title := strings.TrimSpace(input.Title)
	categoryID := strings.TrimSpace(input.CategoryID)

	fields := validateContent(title, input.Price)
	if categoryID == "" {
		fields = append(fields, apperrors.FieldError{Field: "category_id", Message: "is required"})
	}
	if len(fields) > 0 && categoryID == "" {
		return nil, apperrors.NewValidationFailed(fields)
	}

	prepared, err := s.prepareMetadata(ctx, categoryID, input.Condition, input.Metadata)
	if err != nil {
		return nil, err
	}
	fields = append(fields, prepared.fields...)
	if len(fields) > 0 {
		return nil, apperrors.NewValidationFailed(fields)
	}

	ad := &models.Ad{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		CategoryID:  categoryID,
		CityID:      trimmedPtr(input.CityID),
		UserID:      actor.ID,
		Status:      models.AdStatusPendingApproval,
		Metadata:    prepared.json,
		Condition:   prepared.condition,
		IsPremium:   input.IsPremium,
		ShowEmail:   input.ShowEmail,
		ShowPhone:   input.ShowPhone,
		Version:     1,
	}

	access := lifecycle.Access{Path: models.AccessOwner}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ad).Error; err != nil {
			return fmt.Errorf("ad service: create ad: %w", err)
		}
		return recordChange(tx, ad.ID, lifecycle.ActionCreate, ad.Status, ad.Status, actor, access, nil)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, actorEntry(actor, "ad.create", "ad:"+ad.ID, "success", map[string]any{
		"category_id": ad.CategoryID,
	}))
	return ad, nil
}

// Update changes ad content. The owner or an ads.edit holder may edit;
// the status is never changed here.
func (s *AdService) Update(ctx context.Context, actor permissions.Principal, adID string, input UpdateAdInput) (*models.Ad, error) {
	ctx = ensureContext(ctx)

	ad, err := s.load(ctx, s.db, adID)
	if err != nil {
		return nil, err
	}
	access, err := resolveAccess(ctx, s.auditService, actor, ad.UserID, permissions.AdsEdit, "ad:"+ad.ID)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != ad.Version {
		return nil, apperrors.ErrConflict.WithMessage("Ad was modified concurrently")
	}

	title := ad.Title
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	price := ad.Price
	if input.Price != nil {
		price = *input.Price
	}
	fields := validateContent(title, price)

	updates := map[string]any{
		"title":      title,
		"price":      price,
		"version":    gorm.Expr("version + 1"),
		"updated_at": s.now(),
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.CityID != nil {
		updates["city_id"] = trimmedPtr(input.CityID)
	}
	if input.ShowEmail != nil {
		updates["show_email"] = *input.ShowEmail
	}
	if input.ShowPhone != nil {
		updates["show_phone"] = *input.ShowPhone
	}

	if input.Metadata != nil || input.Condition != nil {
		payload := input.Metadata
		if payload == nil {
			payload = decodeJSON(ad.Metadata)
		}
		condition := ad.Condition
		if input.Condition != nil {
			condition = *input.Condition
		}
		prepared, err := s.prepareMetadata(ctx, ad.CategoryID, condition, payload)
		if err != nil {
			return nil, err
		}
		fields = append(fields, prepared.fields...)
		updates["metadata"] = prepared.json
		updates["condition"] = prepared.condition
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationFailed(fields)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ad{}).
			Where("id = ? AND version = ?", ad.ID, ad.Version).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("ad service: update ad: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConflict.WithMessage("Ad was modified concurrently")
		}
		if err := recordChange(tx, ad.ID, lifecycle.ActionEdit, ad.Status, ad.Status, actor, access, nil); err != nil {
			return err
		}
		ad, err = s.load(ctx, tx, ad.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.evict(ctx, ad.ID)
	recordAudit(s.auditService, ctx, actorEntry(actor, "ad.update", "ad:"+ad.ID, "success", map[string]any{
		"access_path":     access.Path,
		"permission_used": access.PermissionUsed(),
	}))
	return ad, nil
}

// Delete soft deletes the ad. The owner or an ads.delete holder may delete.
func (s *AdService) Delete(ctx context.Context, actor permissions.Principal, adID string) error {
	ctx = ensureContext(ctx)

	ad, err := s.load(ctx, s.db, adID)
	if err != nil {
		return err
	}
	access, err := resolveAccess(ctx, s.auditService, actor, ad.UserID, permissions.AdsDelete, "ad:"+ad.ID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := recordChange(tx, ad.ID, lifecycle.ActionDelete, ad.Status, ad.Status, actor, access, nil); err != nil {
			return err
		}
		if err := tx.Delete(&models.Ad{}, "id = ?", ad.ID).Error; err != nil {
			return fmt.Errorf("ad service: delete ad: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.evict(ctx, ad.ID)
	recordAudit(s.auditService, ctx, actorEntry(actor, "ad.delete", "ad:"+ad.ID, "success", map[string]any{
		"access_path":     access.Path,
		"permission_used": access.PermissionUsed(),
	}))
	return nil
}

// Approve publishes a pending ad.
func (s *AdService) Approve(ctx context.Context, actor permissions.Principal, adID string) (*models.Ad, error) {
	return s.Transition(ctx, actor, adID, lifecycle.ActionApprove, lifecycle.Request{})
}

// Reject declines a pending ad. The owner is notified with the reason.
func (s *AdService) Reject(ctx context.Context, actor permissions.Principal, adID, reason string) (*models.Ad, error) {
	return s.Transition(ctx, actor, adID, lifecycle.ActionReject, lifecycle.Request{Reason: reason})
}

// Suspend hides an approved ad. The caller must confirm the action.
func (s *AdService) Suspend(ctx context.Context, actor permissions.Principal, adID string, confirmed bool) (*models.Ad, error) {
	return s.Transition(ctx, actor, adID, lifecycle.ActionSuspend, lifecycle.Request{Confirmed: confirmed})
}

// Unsuspend republishes a suspended ad.
func (s *AdService) Unsuspend(ctx context.Context, actor permissions.Principal, adID string) (*models.Ad, error) {
	return s.Transition(ctx, actor, adID, lifecycle.ActionUnsuspend, lifecycle.Request{})
}

// Transition performs a moderation action: permission check, request
// validation, then an atomic compare-and-swap on the ad status. Side effects
// run only after the change is committed.
func (s *AdService) Transition(ctx context.Context, actor permissions.Principal, adID string, action lifecycle.Action, req lifecycle.Request) (*models.Ad, error) {
	ctx = ensureContext(ctx)

	ad, err := s.transition(ctx, actor, adID, action, req)
	metrics.AdTransitions.WithLabelValues(string(action), transitionResult(err)).Inc()
	return ad, err
}

func (s *AdService) transition(ctx context.Context, actor permissions.Principal, adID string, action lifecycle.Action, req lifecycle.Request) (*models.Ad, error) {
	permission, ok := lifecycle.PermissionFor(action)
	if !ok {
		return nil, apperrors.ErrInvalidTransition.WithMessage(fmt.Sprintf("Action %s cannot be requested", action))
	}
	if err := authorize(ctx, s.auditService, actor, permission, "ad:"+adID); err != nil {
		return nil, err
	}
	if err := lifecycle.Check(action, req); err != nil {
		return nil, err
	}

	ad, transition, err := s.apply(ctx, adID, action, actor, lifecycle.AdminAccess(permission), strings.TrimSpace(req.Reason))
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, ad, transition, actor, lifecycle.AdminAccess(permission))
	return ad, nil
}

// apply runs the guarded status update and its history record in one
// transaction. The row is read with a locking read so a snapshot cannot hide a
// committed change. A lost race surfaces as InvalidTransition when the status
// moved, or Conflict when only the version did.
func (s *AdService) apply(ctx context.Context, adID string, action lifecycle.Action, actor permissions.Principal, access lifecycle.Access, reason string) (*models.Ad, lifecycle.Transition, error) {
	var (
		ad         *models.Ad
		transition lifecycle.Transition
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(ctx, lockForUpdate(tx), adID)
		if err != nil {
			return err
		}
		transition, err = lifecycle.Plan(current.Status, action)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{
			"status":           transition.To,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
			"rejection_reason": nil,
		}
		var changeReason *string
		switch action {
		case lifecycle.ActionApprove:
			updates["approved_at"] = now
			updates["expires_at"] = now.AddDate(0, 0, s.cfg.ExpiryDays)
		case lifecycle.ActionReject:
			updates["rejection_reason"] = reason
			changeReason = &reason
		}

		res := tx.Model(&models.Ad{}).
			Where("id = ? AND status = ? AND version = ?", current.ID, current.Status, current.Version).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("ad service: update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			latest, err := s.load(ctx, lockForUpdate(tx), current.ID)
			if err != nil {
				return err
			}
			if latest.Status != current.Status {
				_, err = lifecycle.Plan(latest.Status, action)
				return err
			}
			return apperrors.ErrConflict.WithMessage("Ad was modified concurrently")
		}

		if err := recordChange(tx, current.ID, action, current.Status, transition.To, actor, access, changeReason); err != nil {
			return err
		}

		ad, err = s.load(ctx, tx, current.ID)
		return err
	})
	if err != nil {
		return nil, lifecycle.Transition{}, err
	}
	return ad, transition, nil
}

func (s *AdService) afterTransition(ctx context.Context, ad *models.Ad, transition lifecycle.Transition, actor permissions.Principal, access lifecycle.Access) {
	s.evict(ctx, ad.ID)

	recordAudit(s.auditService, ctx, actorEntry(actor, "ad."+string(transition.Action), "ad:"+ad.ID, "success", map[string]any{
		"from":            transition.From,
		"to":              transition.To,
		"access_path":     access.Path,
		"permission_used": access.PermissionUsed(),
	}))

	if !transition.NotifyOwner || s.notifier == nil {
		return
	}
	reason := ""
	if ad.RejectionReason != nil {
		reason = *ad.RejectionReason
	}
	if err := s.notifier.NotifyRejection(ctx, ad.UserID, ad.ID, reason); err != nil {
		metrics.NotificationFailures.Inc()
		logger.WithModule("ads").Warn("owner notification failed",
			zap.String("ad_id", ad.ID),
			zap.String("owner_id", ad.UserID),
			zap.String("action", string(transition.Action)),
			zap.Error(err),
		)
	}
}

// ExpireStale moves approved ads whose expiry passed to EXPIRED. Ads that
// changed status meanwhile are skipped.
func (s *AdService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	ctx = ensureContext(ctx)

	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.AdStatusApproved, now.UTC()).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("ad service: find stale ads: %w", err)
	}

	var (
		expired int
		errs    error
	)
	system := permissions.Principal{}
	for _, id := range ids {
		ad, transition, err := s.apply(ctx, id, lifecycle.ActionExpire, system, lifecycle.SystemAccess(), "")
		metrics.AdTransitions.WithLabelValues(string(lifecycle.ActionExpire), transitionResult(err)).Inc()
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindInvalidTransition) || apperrors.IsKind(err, apperrors.KindNotFound) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("expire ad %s: %w", id, err))
			continue
		}
		s.afterTransition(ctx, ad, transition, system, lifecycle.SystemAccess())
		expired++
	}
	return expired, errs
}

// Get returns a public ad and counts the view. Only APPROVED ads are visible.
func (s *AdService) Get(ctx context.Context, adID string) (*models.Ad, error) {
	ctx = ensureContext(ctx)
	adID = strings.TrimSpace(adID)

	res := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("id = ? AND status = ?", adID, models.AdStatusApproved).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("ad service: count view: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAdNotFound
	}

	var ad models.Ad
	if hit, _ := cache.GetJSON(ctx, s.cache, cache.AdKey(adID), &ad); !hit {
		loaded, err := s.load(ctx, s.db, adID)
		if err != nil {
			return nil, err
		}
		ad = *loaded
		_ = cache.SetJSON(ctx, s.cache, cache.AdKey(adID), ad, s.cfg.CacheTTL)
	}

	var views []int64
	if err := s.db.WithContext(ctx).Model(&models.Ad{}).Where("id = ?", adID).Pluck("views", &views).Error; err == nil && len(views) == 1 {
		ad.Views = views[0]
	}
	return &ad, nil
}

// GetForPrincipal returns an ad in any status to its owner or an ads.view holder.
func (s *AdService) GetForPrincipal(ctx context.Context, actor permissions.Principal, adID string) (*models.Ad, error) {
	ctx = ensureContext(ctx)

	ad, err := s.load(ctx, s.db, adID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveAccess(ctx, s.auditService, actor, ad.UserID, permissions.AdsView, "ad:"+ad.ID); err != nil {
		return nil, err
	}
	return ad, nil
}

// ListPublic lists approved ads. A city filter includes ads valid in all
// cities; a category filter includes its direct children.
func (s *AdService) ListPublic(ctx context.Context, opts ListAdsOptions) ([]models.Ad, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Ad{}).Where("status = ?", models.AdStatusApproved)
	if cityID := strings.TrimSpace(opts.Filters.CityID); cityID != "" {
		query = query.Where("city_id = ? OR city_id IS NULL", cityID)
	}
	if categoryID := strings.TrimSpace(opts.Filters.CategoryID); categoryID != "" {
		var ids []string
		if err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("parent_id = ?", categoryID).
			Pluck("id", &ids).Error; err != nil {
			return nil, 0, fmt.Errorf("ad service: load subcategories: %w", err)
		}
		query = query.Where("category_id IN ?", append(ids, categoryID))
	}
	opts.Filters.Status = ""
	return s.list(query, opts)
}

// ListMine lists the actor's own ads in every status.
func (s *AdService) ListMine(ctx context.Context, actor permissions.Principal, opts ListAdsOptions) ([]models.Ad, int64, error) {
	ctx = ensureContext(ctx)

	if actor.Anonymous() {
		return nil, 0, apperrors.ErrUnauthorized
	}
	query := s.db.WithContext(ctx).Model(&models.Ad{}).Where("user_id = ?", actor.ID)
	return s.list(query, opts)
}

// ListForModeration lists ads in any status. Requires ads.view.
func (s *AdService) ListForModeration(ctx context.Context, actor permissions.Principal, opts ListAdsOptions) ([]models.Ad, int64, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.AdsView, "ads"); err != nil {
		return nil, 0, err
	}
	query := s.db.WithContext(ctx).Model(&models.Ad{})
	if categoryID := strings.TrimSpace(opts.Filters.CategoryID); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	return s.list(query, opts)
}

func (s *AdService) list(query *gorm.DB, opts ListAdsOptions) ([]models.Ad, int64, error) {
	page, perPage := normalisePage(opts.Page, opts.PageSize)

	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if opts.Filters.MinPrice != nil {
		query = query.Where("price >= ?", *opts.Filters.MinPrice)
	}
	if opts.Filters.MaxPrice != nil {
		query = query.Where("price <= ?", *opts.Filters.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ad service: count ads: %w", err)
	}

	var ads []models.Ad
	if err := query.
		Order("is_premium DESC").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&ads).Error; err != nil {
		return nil, 0, fmt.Errorf("ad service: list ads: %w", err)
	}
	return ads, total, nil
}

// History returns the status change log of an ad, including deleted ads.
// The owner or an ads.view holder may read it.
func (s *AdService) History(ctx context.Context, actor permissions.Principal, adID string) ([]models.AdStatusChange, error) {
	ctx = ensureContext(ctx)

	ad, err := s.load(ctx, s.db.Unscoped(), adID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveAccess(ctx, s.auditService, actor, ad.UserID, permissions.AdsView, "ad:"+ad.ID); err != nil {
		return nil, err
	}

	var changes []models.AdStatusChange
	if err := s.db.WithContext(ctx).
		Where("ad_id = ?", ad.ID).
		Order("created_at ASC").
		Find(&changes).Error; err != nil {
		return nil, fmt.Errorf("ad service: load history: %w", err)
	}
	return changes, nil
}

func (s *AdService) load(ctx context.Context, db *gorm.DB, adID string) (*models.Ad, error) {
	var ad models.Ad
	if err := db.WithContext(ctx).First(&ad, "id = ?", strings.TrimSpace(adID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("ad service: load ad: %w", err)
	}
	return &ad, nil
}

// lockForUpdate turns the next read into SELECT ... FOR UPDATE. SQLite has no
// row locks and drops the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *AdService) evict(ctx context.Context, adID string) {
	if err := cache.Evict(ctx, s.cache, cache.AdKey(adID)); err != nil {
		logger.WithModule("ads").Warn("ad cache eviction failed", zap.String("ad_id", adID), zap.Error(err))
	}
}

type preparedMetadata struct {
	json      datatypes.JSON
	condition string
	fields    []apperrors.FieldError
}

// prepareMetadata resolves the category schema and validates the payload.
// Field errors are returned in the result; other failures as the error.
func (s *AdService) prepareMetadata(ctx context.Context, categoryID, condition string, payload map[string]any) (preparedMetadata, error) {
	var out preparedMetadata

	schema, categoryType, err := s.categories.Resolver().Resolve(ctx, categoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			out.fields = []apperrors.FieldError{{Field: "category_id", Message: "does not exist"}}
			return out, nil
		}
		return out, mapResolveError(err)
	}

	condition = strings.ToLower(strings.TrimSpace(condition))
	if categoryType == models.CategoryVehicles {
		if condition == "" {
			if value, ok := payload["condition"].(string); ok {
				condition = strings.ToLower(strings.TrimSpace(value))
			}
		}
		if condition != "" && !containsString(metadata.Conditions, condition) {
			out.fields = append(out.fields, apperrors.FieldError{Field: "condition", Message: "must be one of [new, used]"})
		}
	} else if condition != "" {
		out.fields = append(out.fields, apperrors.FieldError{Field: "condition", Message: "is only allowed for vehicles"})
	}
	out.condition = condition

	opts := []metadata.Option{metadata.WithClock(s.cfg.Clock)}
	if schema != nil {
		if errs := metadata.Validate(schema, payload, opts...); len(errs) > 0 {
			metrics.MetadataValidationFailures.WithLabelValues(string(categoryType)).Inc()
			for _, fe := range errs {
				out.fields = append(out.fields, apperrors.FieldError{Field: "metadata." + fe.Field, Message: fe.Message})
			}
			return out, nil
		}
	}

	encoded, err := metadata.Prepare(categoryType, payload, opts...)
	if err != nil {
		return out, fmt.Errorf("ad service: prepare metadata: %w", err)
	}
	out.json = datatypes.JSON(encoded)
	return out, nil
}

func validateContent(title string, price float64) []apperrors.FieldError {
	var fields []apperrors.FieldError
	switch {
	case title == "":
		fields = append(fields, apperrors.FieldError{Field: "title", Message: "is required"})
	case len([]rune(title)) > maxTitleLength:
		fields = append(fields, apperrors.FieldError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLength)})
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		fields = append(fields, apperrors.FieldError{Field: "price", Message: "must not be negative"})
	}
	return fields
}

func recordChange(tx *gorm.DB, adID string, action lifecycle.Action, from, to models.AdStatus, actor permissions.Principal, access lifecycle.Access, reason *string) error {
	role := string(actor.Role)
	if access.Path == models.AccessSystem || role == "" {
		role = systemActorRole
	}
	change := models.AdStatusChange{
		AdID:           adID,
		Action:         string(action),
		FromStatus:     from,
		ToStatus:       to,
		ActorID:        stringPtr(actor.ID),
		ActorRole:      role,
		AccessPath:     access.Path,
		PermissionUsed: access.PermissionUsed(),
		Reason:         reason,
	}
	if err := tx.Create(&change).Error; err != nil {
		return fmt.Errorf("ad service: record status change: %w", err)
	}
	return nil
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsKind(err, apperrors.KindForbidden):
		return "forbidden"
	case apperrors.IsKind(err, apperrors.KindInvalidTransition), apperrors.IsKind(err, apperrors.KindValidationFailed):
		return "invalid"
	case apperrors.IsKind(err, apperrors.KindConflict):
		return "conflict"
	default:
		return "error"
	}
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
