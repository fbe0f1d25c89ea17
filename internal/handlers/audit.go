package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/services"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

// AuditHandler exposes the audit trail to holders of audit.view.
type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /api/admin/audit?user_id=&action=&result=&resource=&since=&until=
func (h *AuditHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	filters, err := auditFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, perPage := pagination(c)
	logs, total, err := h.svc.List(requestContext(c), actor, services.AuditListOptions{
		Page:     page,
		PageSize: perPage,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, logs, page, perPage, total)
}

// auditFilters reads the query string. Malformed timestamps and inverted
// ranges are rejected instead of silently widening the result.
func auditFilters(c *gin.Context) (services.AuditFilters, error) {
	filters := services.AuditFilters{
		UserID:   strings.TrimSpace(c.Query("user_id")),
		Action:   strings.TrimSpace(c.Query("action")),
		Result:   strings.TrimSpace(c.Query("result")),
		Resource: strings.TrimSpace(c.Query("resource")),
	}

	var fields []apperrors.FieldError
	parse := func(key string) *time.Time {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			return nil
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: key, Message: "must be an RFC 3339 timestamp"})
			return nil
		}
		return &ts
	}
	filters.Since = parse("since")
	filters.Until = parse("until")

	if filters.Since != nil && filters.Until != nil && filters.Until.Before(*filters.Since) {
		fields = append(fields, apperrors.FieldError{Field: "until", Message: "must not be before since"})
	}
	if len(fields) > 0 {
		return services.AuditFilters{}, apperrors.NewValidationFailed(fields)
	}
	return filters, nil
}
