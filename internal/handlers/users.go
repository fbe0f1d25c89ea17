package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

type UserHandler struct {
	service *services.UserService
}

type updateUserRequest struct {
	Email *string `json:"email"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	page, per := pagination(c)

	filters := services.UserFilters{
		Role:  models.Role(strings.ToUpper(strings.TrimSpace(c.Query("role")))),
		Query: strings.TrimSpace(c.Query("q")),
	}
	switch c.Query("active") {
	case "true":
		active := true
		filters.IsActive = &active
	case "false":
		active := false
		filters.IsActive = &active
	}

	users, total, err := h.service.List(requestContext(c), actor, services.ListUsersOptions{Page: page, PageSize: per, Filters: filters})
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for i := range users {
		payload = append(payload, newUserPayload(&users[i], nil))
	}
	response.Page(c, payload, page, per, total)
}

// GET /api/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	if _, ok := principal(c); !ok {
		return
	}
	user, err := h.service.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, newUserPayload(user, nil))
}

// PATCH /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user, err := h.service.Update(requestContext(c), actor, actor.ID, services.UpdateUserInput{
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, newUserPayload(user, nil))
}

// PUT /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user, err := h.service.SetActive(requestContext(c), actor, c.Param("id"), *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, newUserPayload(user, nil))
}
