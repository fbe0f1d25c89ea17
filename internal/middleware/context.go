package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/permissions"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxPrincipalKey = "principal"
)

// PrincipalFrom returns the authenticated principal of the request.
func PrincipalFrom(c *gin.Context) (permissions.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return permissions.Principal{}, false
	}
	principal, ok := v.(permissions.Principal)
	if !ok || principal.Anonymous() {
		return permissions.Principal{}, false
	}
	return principal, true
}

// SetPrincipal stores the principal on the request context.
func SetPrincipal(c *gin.Context, principal permissions.Principal) {
	c.Set(CtxPrincipalKey, principal)
	c.Set(CtxUserIDKey, principal.ID)
}
