package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

type stubLoader map[string]permissions.Principal

func (s stubLoader) Load(_ context.Context, userID string) (permissions.Principal, error) {
	p, ok := s[userID]
	if !ok {
		return permissions.Principal{}, apperrors.ErrUnauthorized
	}
	return p, nil
}

func newTokenService(t *testing.T) *iauth.TokenService {
	t.Helper()
	svc, err := iauth.NewTokenService(iauth.JWTConfig{Secret: "secret", Issuer: "test-suite", AccessTokenTTL: time.Minute})
	require.NoError(t, err)
	return svc
}

func issue(t *testing.T, svc *iauth.TokenService, userID string) string {
	t.Helper()
	token, err := svc.Issue(userID, "USER")
	require.NoError(t, err)
	return token.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := newTokenService(t)
	loader := stubLoader{
		"user-123": {ID: "user-123", Role: models.RoleAdmin, Grants: permissions.NewGrantSet(permissions.AdsView)},
	}

	r := gin.New()
	r.GET("/secure", Auth(tokens, loader), func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"role":    principal.Role,
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, "user-123"))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "user-123", payload["user_id"])
	require.Equal(t, "ADMIN", payload["role"])

	// token for a user that no longer loads
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, "deleted"))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, apperrors.KindUnauthorized, body.Error.Kind)
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := newTokenService(t)
	loader := stubLoader{"user-1": {ID: "user-1", Role: models.RoleUser}}

	r := gin.New()
	r.GET("/public", OptionalAuth(tokens, loader), func(c *gin.Context) {
		_, ok := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	cases := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "Bearer garbage", want: false},
		{header: "Bearer " + issue(t, tokens, "user-1"), want: true},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var payload map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		require.Equal(t, tc.want, payload["authenticated"], tc.header)
	}
}
