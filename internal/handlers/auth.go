package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

// AuthHandler manages registration, login and the current principal.
type AuthHandler struct {
	users  *services.UserService
	tokens *iauth.TokenService
}

func NewAuthHandler(users *services.UserService, tokens *iauth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type userPayload struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Role        models.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	Permissions []string    `json:"permissions,omitempty"`
}

func newUserPayload(user *models.User, grants []string) userPayload {
	return userPayload{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		Permissions: grants,
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterUserInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Register(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, newUserPayload(user, nil))
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)

	user, err := h.users.Authenticate(requestContext(c), req.Identifier, req.Password, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  newUserPayload(user, nil),
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(requestContext(c), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, newUserPayload(user, permissions.Effective(actor)))
}
