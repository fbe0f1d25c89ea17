package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/app"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/pkg/logger"
)

// CheckStatus captures the outcome of a posture check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const (
	minSecretLength        = 32
	recommendedSecretLen   = 48
	maxAccessTokenTTL      = 24 * time.Hour
	maxPrincipalCacheTTL   = 5 * time.Minute
	checkSuperAdmin        = "super_admin_present"
	checkJWTSecret         = "jwt_secret_strength"
	checkAccessTokenTTL    = "access_token_ttl"
	checkPrincipalCacheTTL = "principal_cache_ttl"
	checkRateLimit         = "rate_limit_enabled"
)

// Check contains the result of a single verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
}

// Result aggregates all checks with a status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// PostureAudit evaluates the access-control configuration of a deployment.
type PostureAudit struct {
	db  *gorm.DB
	cfg *app.Config
	now func() time.Time
}

// NewPostureAudit constructs the audit. Missing inputs degrade the affected
// checks to warnings.
func NewPostureAudit(db *gorm.DB, cfg *app.Config) *PostureAudit {
	return &PostureAudit{db: db, cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used in results.
func (s *PostureAudit) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run executes all checks.
func (s *PostureAudit) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{s.checkSuperAdmin(ctx)}
	if s.cfg == nil {
		checks = append(checks, Check{
			ID:      "configuration",
			Status:  StatusWarn,
			Message: "Configuration not loaded; skipping configuration checks.",
		})
	} else {
		checks = append(checks,
			s.checkJWTSecret(),
			s.checkAccessTokenTTL(),
			s.checkPrincipalCacheTTL(),
			s.checkRateLimit(),
		)
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{CheckedAt: s.now().UTC(), Checks: checks, Summary: summary}
}

// LogFindings writes every non-passing check to the security log.
func LogFindings(result Result) {
	log := logger.Security()
	for _, check := range result.Checks {
		fields := []zap.Field{
			zap.String("check", check.ID),
			zap.String("remediation", check.Remediation),
		}
		switch check.Status {
		case StatusFail:
			log.Error(check.Message, fields...)
		case StatusWarn:
			log.Warn(check.Message, fields...)
		}
	}
}

func (s *PostureAudit) checkSuperAdmin(ctx context.Context) Check {
	if s.db == nil {
		return Check{
			ID:      checkSuperAdmin,
			Status:  StatusWarn,
			Message: "Database unavailable; unable to confirm a super admin exists.",
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleSuperAdmin, true).
		Count(&count).Error; err != nil {
		return Check{
			ID:      checkSuperAdmin,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Could not count super admins: %v", err),
		}
	}

	if count == 0 {
		return Check{
			ID:          checkSuperAdmin,
			Status:      StatusFail,
			Message:     "No active super admin; nobody can grant permissions.",
			Remediation: "Set auth.super_admin.username, email and password to provision one at startup.",
		}
	}
	return Check{ID: checkSuperAdmin, Status: StatusPass, Message: fmt.Sprintf("%d active super admin(s).", count)}
}

func (s *PostureAudit) checkJWTSecret() Check {
	length := len(strings.TrimSpace(s.cfg.Auth.JWT.Secret))
	switch {
	case length == 0:
		return Check{
			ID:          checkJWTSecret,
			Status:      StatusFail,
			Message:     "Missing JWT signing secret.",
			Remediation: "Set CLASSIFIEDS_AUTH_JWT_SECRET to a random value of at least 48 bytes.",
		}
	case length < minSecretLength:
		return Check{
			ID:          checkJWTSecret,
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: "Use a randomly generated secret of at least 32 bytes.",
		}
	case length < recommendedSecretLen:
		return Check{
			ID:          checkJWTSecret,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes.", length),
			Remediation: "Increase CLASSIFIEDS_AUTH_JWT_SECRET to at least 48 bytes.",
		}
	default:
		return Check{ID: checkJWTSecret, Status: StatusPass, Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length)}
	}
}

func (s *PostureAudit) checkAccessTokenTTL() Check {
	ttl := s.cfg.Auth.JWT.TTL
	if ttl > maxAccessTokenTTL {
		return Check{
			ID:          checkAccessTokenTTL,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Access tokens live for %s.", ttl),
			Remediation: "Keep auth.jwt.access_token_ttl at 24h or lower.",
		}
	}
	return Check{ID: checkAccessTokenTTL, Status: StatusPass, Message: "Access token lifetime is bounded."}
}

func (s *PostureAudit) checkPrincipalCacheTTL() Check {
	ttl := s.cfg.Cache.PrincipalTTL
	if ttl > maxPrincipalCacheTTL {
		return Check{
			ID:          checkPrincipalCacheTTL,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Cached grant sets live for %s; revocations on other instances apply late.", ttl),
			Remediation: "Keep cache.principal_ttl at 5m or lower.",
		}
	}
	return Check{ID: checkPrincipalCacheTTL, Status: StatusPass, Message: "Principal cache lifetime is bounded."}
}

func (s *PostureAudit) checkRateLimit() Check {
	if s.cfg.RateLimit.Requests <= 0 || s.cfg.RateLimit.Window <= 0 {
		return Check{
			ID:          checkRateLimit,
			Status:      StatusWarn,
			Message:     "Request rate limiting is disabled.",
			Remediation: "Set rate_limit.requests and rate_limit.window.",
		}
	}
	return Check{ID: checkRateLimit, Status: StatusPass, Message: "Request rate limiting is enabled."}
}
