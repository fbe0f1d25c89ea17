package services

import (
	"context"

	"github.com/charlesng35/classifieds/internal/permissions"
)

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	_ = audit.Log(ctx, entry)
}

// RecordDenial writes the permission.denied entry for a refused check. Audit
// failures are tolerated.
func (s *AuditService) RecordDenial(ctx context.Context, actor permissions.Principal, permission, resource string) {
	recordAudit(s, ctx, actorEntry(actor, "permission.denied", resource, "denied", map[string]any{
		"permission": permission,
		"role":       actor.Role,
	}))
}

func actorEntry(actor permissions.Principal, action, resource, result string, metadata map[string]any) AuditEntry {
	return AuditEntry{
		UserID:   stringPtr(actor.ID),
		Action:   action,
		Resource: resource,
		Result:   result,
		Metadata: metadata,
	}
}
