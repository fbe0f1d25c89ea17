package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/auditctx"
	"github.com/charlesng35/classifieds/internal/middleware"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

// requestContext returns the request context tagged with the caller's origin
// for audit entries, with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return auditctx.WithOrigin(c.Request.Context(), auditctx.Origin{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// principal returns the authenticated caller or writes a 401 and reports false.
func principal(c *gin.Context) (permissions.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return permissions.Principal{}, false
	}
	return p, true
}
