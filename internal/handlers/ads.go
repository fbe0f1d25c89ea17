package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

// AdHandler exposes the public catalogue and owner ad management.
type AdHandler struct {
	ads *services.AdService
}

func NewAdHandler(ads *services.AdService) *AdHandler {
	return &AdHandler{ads: ads}
}

type createAdRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	CategoryID  string         `json:"category_id"`
	CityID      *string        `json:"city_id"`
	Condition   string         `json:"condition"`
	Metadata    map[string]any `json:"metadata"`
	IsPremium   bool           `json:"is_premium"`
	ShowEmail   bool           `json:"show_email"`
	ShowPhone   bool           `json:"show_phone"`
}

type updateAdRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price"`
	CityID      *string        `json:"city_id"`
	Condition   *string        `json:"condition"`
	Metadata    map[string]any `json:"metadata"`
	ShowEmail   *bool          `json:"show_email"`
	ShowPhone   *bool          `json:"show_phone"`
	Version     *int64         `json:"version"`
}

// GET /api/ads
func (h *AdHandler) List(c *gin.Context) {
	page, perPage := pagination(c)
	ads, total, err := h.ads.ListPublic(requestContext(c), services.ListAdsOptions{
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

// GET /api/ads/:id
func (h *AdHandler) Get(c *gin.Context) {
	ad, err := h.ads.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, ad)
}

// GET /api/ads/mine
func (h *AdHandler) Mine(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	page, perPage := pagination(c)
	ads, total, err := h.ads.ListMine(requestContext(c), actor, services.ListAdsOptions{
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

// POST /api/ads
func (h *AdHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createAdRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ad, err := h.ads.Create(requestContext(c), actor, services.CreateAdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		CityID:      req.CityID,
		Condition:   req.Condition,
		Metadata:    req.Metadata,
		IsPremium:   req.IsPremium,
		ShowEmail:   req.ShowEmail,
		ShowPhone:   req.ShowPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ad)
}

// PATCH /api/ads/:id
func (h *AdHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req updateAdRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ad, err := h.ads.Update(requestContext(c), actor, c.Param("id"), services.UpdateAdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CityID:      req.CityID,
		Condition:   req.Condition,
		Metadata:    req.Metadata,
		ShowEmail:   req.ShowEmail,
		ShowPhone:   req.ShowPhone,
		Version:     req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, ad)
}

// DELETE /api/ads/:id
func (h *AdHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	if err := h.ads.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/ads/:id/history
func (h *AdHandler) History(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	changes, err := h.ads.History(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, changes)
}

func adFilters(c *gin.Context) services.AdFilters {
	return services.AdFilters{
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		CityID:     strings.TrimSpace(c.Query("city_id")),
		Query:      strings.TrimSpace(c.Query("q")),
		Status:     models.AdStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		MinPrice:   parseFloatQuery(c, "min_price"),
		MaxPrice:   parseFloatQuery(c, "max_price"),
	}
}
