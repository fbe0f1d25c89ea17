package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

// ErrReportNotFound indicates the report id does not resolve.
var ErrReportNotFound = apperrors.New("REPORT_NOT_FOUND", apperrors.KindNotFound, "Report not found", http.StatusNotFound)

// CreateReportInput describes a user report on an ad or a message.
type CreateReportInput struct {
	AdID      *string
	MessageID *string
	Type      string
	Reason    string
}

// UpdateReportInput captures moderator handling of a report.
type UpdateReportInput struct {
	Status     models.ReportStatus
	AdminNotes *string
}

// ReportFilters narrows report listings.
type ReportFilters struct {
	Status models.ReportStatus
	Type   string
	AdID   string
}

// ListReportsOptions controls pagination for report listing.
type ListReportsOptions struct {
	Page     int
	PageSize int
	Filters  ReportFilters
}

// ReportService records and triages user reports.
type ReportService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB, audit *AuditService) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db, auditService: audit}, nil
}

// Create files a report. Any authenticated principal may report.
func (s *ReportService) Create(ctx context.Context, actor permissions.Principal, input CreateReportInput) (*models.Report, error) {
	ctx = ensureContext(ctx)

	if actor.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	adID := trimmedPtr(input.AdID)
	messageID := trimmedPtr(input.MessageID)
	reportType := strings.ToLower(strings.TrimSpace(input.Type))
	reason := strings.TrimSpace(input.Reason)

	var fields []apperrors.FieldError
	if (adID == nil) == (messageID == nil) {
		fields = append(fields, apperrors.FieldError{Field: "ad_id", Message: "exactly one of ad_id or message_id is required"})
	}
	if !containsString(models.ReportTypes, reportType) {
		fields = append(fields, apperrors.FieldError{Field: "type", Message: fmt.Sprintf("must be one of [%s]", strings.Join(models.ReportTypes, ", "))})
	}
	if reason == "" {
		fields = append(fields, apperrors.FieldError{Field: "reason", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationFailed(fields)
	}

	if adID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Ad{}).Where("id = ?", *adID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("report service: check ad: %w", err)
		}
		if count == 0 {
			return nil, ErrAdNotFound
		}
	}

	report := &models.Report{
		ReporterID: actor.ID,
		AdID:       adID,
		MessageID:  messageID,
		Type:       reportType,
		Reason:     reason,
		Status:     models.ReportPending,
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("report service: create report: %w", err)
	}
	return report, nil
}

// List returns reports newest first. Requires reports.view.
func (s *ReportService) List(ctx context.Context, actor permissions.Principal, opts ListReportsOptions) ([]models.Report, int64, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.ReportsView, "reports"); err != nil {
		return nil, 0, err
	}

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if t := strings.TrimSpace(opts.Filters.Type); t != "" {
		query = query.Where("type = ?", t)
	}
	if adID := strings.TrimSpace(opts.Filters.AdID); adID != "" {
		query = query.Where("ad_id = ?", adID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("report service: count reports: %w", err)
	}

	var reports []models.Report
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("report service: list reports: %w", err)
	}
	return reports, total, nil
}

// Update records moderator handling. Requires reports.manage.
func (s *ReportService) Update(ctx context.Context, actor permissions.Principal, id string, input UpdateReportInput) (*models.Report, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.ReportsManage, "report:"+id); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "status", Message: "must be one of [pending, reviewed, resolved, dismissed]"}})
	}

	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report service: load report: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     input.Status,
		"handled_by": actor.ID,
		"handled_at": now,
	}
	if input.AdminNotes != nil {
		updates["admin_notes"] = strings.TrimSpace(*input.AdminNotes)
	}
	if err := s.db.WithContext(ctx).Model(&report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("report service: update report: %w", err)
	}

	recordAudit(s.auditService, ctx, actorEntry(actor, "report.update", "report:"+report.ID, "success", map[string]any{
		"status": input.Status,
	}))

	if err := s.db.WithContext(ctx).First(&report, "id = ?", report.ID).Error; err != nil {
		return nil, fmt.Errorf("report service: reload report: %w", err)
	}
	return &report, nil
}
