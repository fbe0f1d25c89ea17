package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/internal/services"
	"github.com/charlesng35/classifieds/pkg/response"
)

type PermissionHandler struct {
	svc *services.PermissionService
}

func NewPermissionHandler(svc *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// GET /api/permissions/registry
func (h *PermissionHandler) Registry(c *gin.Context) {
	response.Success(c, http.StatusOK, h.svc.Registry())
}

// GET /api/permissions/me
func (h *PermissionHandler) Mine(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	perms := permissions.Effective(actor)
	if perms == nil {
		perms = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"role":        actor.Role,
		"permissions": perms,
	})
}

// GET /api/admin/users/:id/permissions
func (h *PermissionHandler) ListGrants(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	grants, err := h.svc.ListGrants(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}

// POST /api/admin/users/:id/permissions/:permission
func (h *PermissionHandler) Grant(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	if err := h.svc.Grant(requestContext(c), actor, c.Param("id"), c.Param("permission")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"granted": true})
}

// DELETE /api/admin/users/:id/permissions/:permission
func (h *PermissionHandler) Revoke(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	if err := h.svc.Revoke(requestContext(c), actor, c.Param("id"), c.Param("permission")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// PUT /api/admin/users/:id/role
func (h *PermissionHandler) SetRole(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req setRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	role := models.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	user, err := h.svc.SetRole(requestContext(c), actor, c.Param("id"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, newUserPayload(user, nil))
}
