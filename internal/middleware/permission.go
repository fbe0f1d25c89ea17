package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/logger"
	"github.com/charlesng35/classifieds/pkg/metrics"
	"github.com/charlesng35/classifieds/pkg/response"
)

// DenialAuditor writes refused authorization checks to the audit trail.
type DenialAuditor interface {
	RecordDenial(ctx context.Context, actor permissions.Principal, permission, resource string)
}

// StaffCheck is the audit label of a RequireStaff denial.
const StaffCheck = "role.staff"

// RequirePermission gates a route on a single catalog permission for routes
// whose handler performs no further authorization. Denials are audited.
func RequirePermission(auditor DenialAuditor, permissionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		label := permissionID
		if !permissions.Known(permissionID) {
			label = "unknown"
		}
		if err := permissions.Authorize(principal, permissionID); err != nil {
			metrics.PermissionChecks.WithLabelValues(label, "denied").Inc()
			logger.FromContext(c.Request.Context(), logger.Security()).Warn("permission denied",
				zap.String("user_id", principal.ID),
				zap.String("permission", permissionID),
				zap.String("path", c.FullPath()),
			)
			recordDenial(c, auditor, principal, permissionID)
			response.Error(c, err)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(label, "allowed").Inc()
		c.Next()
	}
}

// RequireStaff rejects USER principals early on administrative route groups.
// Fine grained permission checks still happen in the services.
func RequireStaff(auditor DenialAuditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if principal.Role != models.RoleAdmin && principal.Role != models.RoleSuperAdmin {
			logger.FromContext(c.Request.Context(), logger.Security()).Warn("staff route denied",
				zap.String("user_id", principal.ID),
				zap.String("role", string(principal.Role)),
				zap.String("path", c.FullPath()),
			)
			recordDenial(c, auditor, principal, StaffCheck)
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func recordDenial(c *gin.Context, auditor DenialAuditor, principal permissions.Principal, check string) {
	if auditor == nil {
		return
	}
	resource := "route:" + c.Request.Method + " " + c.FullPath()
	auditor.RecordDenial(c.Request.Context(), principal, check, resource)
}
