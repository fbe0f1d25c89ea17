package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

// ReportHandler accepts abuse reports and lets staff triage them.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type createReportRequest struct {
	AdID      *string `json:"ad_id"`
	MessageID *string `json:"message_id"`
	Type      string  `json:"type" validate:"required"`
	Reason    string  `json:"reason" validate:"required,max=2000"`
}

type updateReportRequest struct {
	Status     string  `json:"status" validate:"required"`
	AdminNotes *string `json:"admin_notes"`
}

// POST /api/reports
func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createReportRequest
	if !bindAndValidate(c, &req) {
		return
	}

	report, err := h.reports.Create(requestContext(c), actor, services.CreateReportInput{
		AdID:      req.AdID,
		MessageID: req.MessageID,
		Type:      req.Type,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, report)
}

// GET /api/admin/reports
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	page, perPage := pagination(c)
	reports, total, err := h.reports.List(requestContext(c), actor, services.ListReportsOptions{
		Page:     page,
		PageSize: perPage,
		Filters: services.ReportFilters{
			Status: models.ReportStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
			Type:   strings.TrimSpace(c.Query("type")),
			AdID:   strings.TrimSpace(c.Query("ad_id")),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, reports, page, perPage, total)
}

// PATCH /api/admin/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req updateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}

	report, err := h.reports.Update(requestContext(c), actor, c.Param("id"), services.UpdateReportInput{
		Status:     models.ReportStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}
