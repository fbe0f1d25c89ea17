package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

// CategoryHandler serves the category tree and effective schemas.
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type createCategoryRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Slug         string  `json:"slug" validate:"omitempty,max=120"`
	ParentID     *string `json:"parent_id"`
	CategoryType *string `json:"category_type"`
	SortOrder    int     `json:"sort_order"`
}

// GET /api/categories
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categories.Tree(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tree)
}

// GET /api/categories/:id/schema
func (h *CategoryHandler) Schema(c *gin.Context) {
	schema, err := h.categories.Schema(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, schema)
}

// POST /api/admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.CreateCategoryInput{
		Name:      req.Name,
		Slug:      req.Slug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
	}
	if req.CategoryType != nil {
		categoryType := models.CategoryType(strings.ToUpper(strings.TrimSpace(*req.CategoryType)))
		input.CategoryType = &categoryType
	}

	category, err := h.categories.Create(requestContext(c), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}
