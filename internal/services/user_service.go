package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/crypto"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/metrics"
	"github.com/charlesng35/classifieds/pkg/validator"
)

// RegisterUserInput describes the fields accepted when a user signs up.
type RegisterUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateUserInput enumerates mutable profile attributes.
type UpdateUserInput struct {
	Email *string
	Phone *string
}

// UserFilters captures listing filters.
type UserFilters struct {
	IsActive *bool
	Role     models.Role
	Query    string
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	Filters  UserFilters
}

// UserService manages accounts: registration, credentials and activation.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
	principals   *PrincipalService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, auditService *AuditService, principals *PrincipalService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{
		db:           db,
		auditService: auditService,
		principals:   principals,
	}, nil
}

// Register creates a USER account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validator.ValidateStruct(input); err != nil {
		var failures validator.ValidationErrors
		if errors.As(err, &failures) {
			return nil, apperrors.NewValidationFailed(failures.FieldErrors())
		}
		return nil, fmt.Errorf("user service: validate input: %w", err)
	}

	return s.create(ctx, input, models.RoleUser)
}

// EnsureSuperAdmin provisions the bootstrap SUPER_ADMIN account when no
// account with that role exists yet. It reports whether a user was created.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, input RegisterUserInput) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("user service: count super admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.create(ctx, input, models.RoleSuperAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, input RegisterUserInput, role models.Role) (*models.User, error) {
	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "password", Message: "must be at least 8"}})
		}
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    input.Email,
		Password: hashed,
		Phone:    strings.TrimSpace(input.Phone),
		Role:     role,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("Username or email already exists")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   stringPtr(user.ID),
		Username: user.Username,
		Action:   "user.create",
		Resource: "user:" + user.ID,
		Result:   "success",
		Metadata: map[string]any{
			"role": user.Role,
		},
	})

	return user, nil
}

// Authenticate verifies credentials by username or email.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string, ip string) (*models.User, error) {
	ctx = ensureContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if err != nil || !crypto.VerifyPassword(user.Password, password) || !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		recordAudit(s.auditService, ctx, AuditEntry{
			Username:  identifier,
			Action:    "auth.login",
			Result:    "failure",
			IPAddress: ip,
		})
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: record login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:    stringPtr(user.ID),
		Username:  user.Username,
		Action:    "auth.login",
		Resource:  "user:" + user.ID,
		Result:    "success",
		IPAddress: ip,
	})
	return &user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// List retrieves users matching the supplied filters. Requires users.view.
func (s *UserService) List(ctx context.Context, actor permissions.Principal, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.UsersView, "users"); err != nil {
		return nil, 0, err
	}

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.Filters.IsActive != nil {
		query = query.Where("is_active = ?", *opts.Filters.IsActive)
	}
	if opts.Filters.Role != "" {
		query = query.Where("role = ?", opts.Filters.Role)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Update changes profile attributes. Users edit themselves; anyone else
// needs users.edit.
func (s *UserService) Update(ctx context.Context, actor permissions.Principal, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != user.ID {
		if err := authorize(ctx, s.auditService, actor, permissions.UsersEdit, "user:"+user.ID); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !validator.Var(email, "required,email") {
			return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "email", Message: "must be a valid email address"}})
		}
		updates["email"] = email
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("Email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	recordAudit(s.auditService, ctx, actorEntry(actor, "user.update", "user:"+user.ID, "success", nil))
	return s.GetByID(ctx, user.ID)
}

// SetActive toggles the activation flag. Requires users.suspend; nobody can
// deactivate themselves and only a SUPER_ADMIN may deactivate another one.
func (s *UserService) SetActive(ctx context.Context, actor permissions.Principal, id string, active bool) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.UsersSuspend, "user:"+id); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active && user.ID == actor.ID {
		return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "is_active", Message: "cannot deactivate your own account"}})
	}
	if user.Role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, apperrors.ErrForbidden.WithMessage("Only a super admin can change another super admin")
	}

	if user.IsActive != active {
		if err := s.db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
			return nil, fmt.Errorf("user service: set active: %w", err)
		}
		user.IsActive = active
		s.principals.Invalidate(ctx, user.ID)
	}

	action := "user.activate"
	if !active {
		action = "user.deactivate"
	}
	recordAudit(s.auditService, ctx, actorEntry(actor, action, "user:"+user.ID, "success", nil))
	return user, nil
}
