package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

// ModerationHandler drives staff transitions of the ad lifecycle.
type ModerationHandler struct {
	ads *services.AdService
}

func NewModerationHandler(ads *services.AdService) *ModerationHandler {
	return &ModerationHandler{ads: ads}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type suspendRequest struct {
	Confirmed bool `json:"confirmed"`
}

// GET /api/admin/ads
func (h *ModerationHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	page, perPage := pagination(c)
	ads, total, err := h.ads.ListForModeration(requestContext(c), actor, services.ListAdsOptions{
		Page:     page,
		PageSize: perPage,
		Filters:  adFilters(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, ads, page, perPage, total)
}

// POST /api/admin/ads/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ad, err := h.ads.Approve(requestContext(c), actor, c.Param("id"))
	writeAd(c, ad, err)
}

// POST /api/admin/ads/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req rejectRequest
	// a missing body reaches the lifecycle as a blank reason
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	ad, err := h.ads.Reject(requestContext(c), actor, c.Param("id"), req.Reason)
	writeAd(c, ad, err)
}

// POST /api/admin/ads/:id/suspend
func (h *ModerationHandler) Suspend(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req suspendRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	ad, err := h.ads.Suspend(requestContext(c), actor, c.Param("id"), req.Confirmed)
	writeAd(c, ad, err)
}

// POST /api/admin/ads/:id/unsuspend
func (h *ModerationHandler) Unsuspend(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ad, err := h.ads.Unsuspend(requestContext(c), actor, c.Param("id"))
	writeAd(c, ad, err)
}

func writeAd(c *gin.Context, ad *models.Ad, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, ad)
}
