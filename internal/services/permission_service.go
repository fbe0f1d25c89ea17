package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", apperrors.KindNotFound, "User not found", http.StatusNotFound)
	// ErrPermissionNotFound indicates the permission id is not in the catalog.
	ErrPermissionNotFound = apperrors.New("PERMISSION_NOT_FOUND", apperrors.KindNotFound, "Permission not found", http.StatusNotFound)
)

// GrantView describes one explicit grant of a user.
type GrantView struct {
	Permission  permissions.Permission `json:"permission"`
	GrantedByID *string                `json:"granted_by_id,omitempty"`
}

// PermissionService administers the grant relation and principal roles.
type PermissionService struct {
	db           *gorm.DB
	auditService *AuditService
	principals   *PrincipalService
}

// NewPermissionService constructs a PermissionService using the provided database handle.
func NewPermissionService(db *gorm.DB, audit *AuditService, principals *PrincipalService) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	return &PermissionService{
		db:           db,
		auditService: audit,
		principals:   principals,
	}, nil
}

// Registry returns the permission catalog.
func (s *PermissionService) Registry() []permissions.Permission {
	return permissions.All()
}

// ListGrants returns the explicit grants of a user. The actor must hold
// permissions.view unless listing their own grants.
func (s *PermissionService) ListGrants(ctx context.Context, actor permissions.Principal, userID string) ([]GrantView, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)

	if actor.ID != userID {
		if err := authorize(ctx, s.auditService, actor, permissions.PermissionsView, "user:"+userID); err != nil {
			return nil, err
		}
	}

	if _, err := s.loadUser(ctx, s.db, userID); err != nil {
		return nil, err
	}

	var grants []models.PermissionGrant
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("permission_id").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("permission service: list grants: %w", err)
	}

	views := make([]GrantView, 0, len(grants))
	for _, grant := range grants {
		perm, ok := permissions.Get(grant.PermissionID)
		if !ok {
			continue
		}
		views = append(views, GrantView{Permission: *perm, GrantedByID: grant.GrantedByID})
	}
	return views, nil
}

// Grant gives an ADMIN user a permission. Granting an existing grant, or any
// permission to a SUPER_ADMIN, succeeds without changes.
func (s *PermissionService) Grant(ctx context.Context, actor permissions.Principal, userID, permissionID string) error {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	permissionID = strings.TrimSpace(permissionID)

	if err := s.authorizeGrantChange(ctx, actor, userID, permissionID); err != nil {
		return err
	}

	target, err := s.loadUser(ctx, s.db, userID)
	if err != nil {
		return err
	}

	switch target.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
	default:
		return apperrors.NewValidationFailed([]apperrors.FieldError{{
			Field:   "user_id",
			Message: "permissions can only be granted to ADMIN users",
		}})
	}

	grant := models.PermissionGrant{
		UserID:       target.ID,
		PermissionID: permissionID,
		GrantedByID:  stringPtr(actor.ID),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "permission_id"}},
			DoNothing: true,
		}).
		Create(&grant).Error
	if err != nil && !isUniqueConstraintError(err) {
		return fmt.Errorf("permission service: grant: %w", err)
	}

	s.principals.Invalidate(ctx, target.ID)
	recordAudit(s.auditService, ctx, actorEntry(actor, "permission.grant", "user:"+target.ID, "success", map[string]any{
		"permission": permissionID,
	}))
	return nil
}

// Revoke removes a grant. Revoking an absent grant succeeds.
func (s *PermissionService) Revoke(ctx context.Context, actor permissions.Principal, userID, permissionID string) error {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	permissionID = strings.TrimSpace(permissionID)

	if err := s.authorizeGrantChange(ctx, actor, userID, permissionID); err != nil {
		return err
	}

	target, err := s.loadUser(ctx, s.db, userID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", target.ID, permissionID).
		Delete(&models.PermissionGrant{}).Error; err != nil {
		return fmt.Errorf("permission service: revoke: %w", err)
	}

	s.principals.Invalidate(ctx, target.ID)
	recordAudit(s.auditService, ctx, actorEntry(actor, "permission.revoke", "user:"+target.ID, "success", map[string]any{
		"permission": permissionID,
	}))
	return nil
}

// SetRole changes the role of a user. Only SUPER_ADMIN may call it. Leaving
// the ADMIN role clears every grant in the same transaction.
func (s *PermissionService) SetRole(ctx context.Context, actor permissions.Principal, userID string, role models.Role) (*models.User, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)

	if actor.Role != models.RoleSuperAdmin || actor.Anonymous() {
		observeDecision(ctx, s.auditService, actor, permissions.PermissionsManage, "user:"+userID, apperrors.ErrForbidden)
		return nil, apperrors.ErrForbidden.WithMessage("Only a super admin can change roles")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "role", Message: "must be one of [USER, ADMIN, SUPER_ADMIN]"}})
	}
	if actor.ID == userID {
		return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "role", Message: "cannot change your own role"}})
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := s.loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		user = loaded
		if user.Role == role {
			return nil
		}

		if err := tx.Model(user).Update("role", role).Error; err != nil {
			return fmt.Errorf("permission service: update role: %w", err)
		}
		if role != models.RoleAdmin {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.PermissionGrant{}).Error; err != nil {
				return fmt.Errorf("permission service: clear grants: %w", err)
			}
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.principals.Invalidate(ctx, user.ID)
	recordAudit(s.auditService, ctx, actorEntry(actor, "user.set_role", "user:"+user.ID, "success", map[string]any{
		"role": role,
	}))
	return user, nil
}

func (s *PermissionService) authorizeGrantChange(ctx context.Context, actor permissions.Principal, userID, permissionID string) error {
	if err := authorize(ctx, s.auditService, actor, permissions.PermissionsManage, "user:"+userID); err != nil {
		return err
	}
	if !permissions.Known(permissionID) {
		return ErrPermissionNotFound
	}
	// admins can only hand out what they hold themselves
	if actor.Role != models.RoleSuperAdmin {
		if err := authorize(ctx, s.auditService, actor, permissionID, "user:"+userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PermissionService) loadUser(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("permission service: load user: %w", err)
	}
	return &user, nil
}
