package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/permissions"
	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

// PrincipalLoader resolves the principal, including its grants, for a user id.
type PrincipalLoader interface {
	Load(ctx context.Context, userID string) (permissions.Principal, error)
}

// Auth enforces bearer authentication and attaches the freshly loaded
// principal to the request.
func Auth(tokens *iauth.TokenService, principals PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			// all validation failures are reported as 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		principal, err := principals.Load(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		SetPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid bearer token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(tokens *iauth.TokenService, principals PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			c.Next()
			return
		}
		if principal, err := principals.Load(c.Request.Context(), claims.UserID); err == nil {
			c.Set(CtxClaimsKey, claims)
			SetPrincipal(c, principal)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authz[7:])
	return token, token != ""
}
