package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/charlesng35/classifieds/internal/lifecycle"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/logger"
	"github.com/charlesng35/classifieds/pkg/metrics"
)

// authorize evaluates the permission for the principal. Denials are logged as
// security events, counted and written to the audit trail.
func authorize(ctx context.Context, audit *AuditService, actor permissions.Principal, permission, resource string) error {
	err := permissions.Authorize(actor, permission)
	observeDecision(ctx, audit, actor, permission, resource, err)
	return err
}

// resolveAccess applies the owner-or-permission rule for ad mutations. Only
// admin override attempts are counted as permission checks.
func resolveAccess(ctx context.Context, audit *AuditService, actor permissions.Principal, ownerID, permission, resource string) (lifecycle.Access, error) {
	access, err := lifecycle.ResolveAccess(actor, ownerID, permission)
	if err == nil && access.Path == models.AccessOwner {
		return access, nil
	}
	observeDecision(ctx, audit, actor, permission, resource, err)
	return access, err
}

func observeDecision(ctx context.Context, audit *AuditService, actor permissions.Principal, permission, resource string, err error) {
	label := permission
	if !permissions.Known(permission) {
		label = "unknown"
	}

	if err == nil {
		metrics.PermissionChecks.WithLabelValues(label, "allowed").Inc()
		return
	}

	metrics.PermissionChecks.WithLabelValues(label, "denied").Inc()
	logger.FromContext(ctx, logger.Security()).Warn("permission denied",
		zap.String("user_id", actor.ID),
		zap.String("role", string(actor.Role)),
		zap.String("permission", permission),
		zap.String("resource", resource),
	)
	audit.RecordDenial(ctx, actor, permission, resource)
}
