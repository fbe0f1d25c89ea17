package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/app"
	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/database/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	tokens, err := iauth.NewTokenService(iauth.JWTConfig{Secret: "router-test-secret-with-enough-bytes", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	cfg := &app.Config{}
	svc, err := app.NewServices(db, nil, cfg)
	require.NoError(t, err)

	router, err := NewRouter(db, tokens, cfg, svc, nil)
	require.NoError(t, err)
	return router
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/ads", http.StatusOK},
		{http.MethodGet, "/api/categories", http.StatusOK},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/ads/mine", http.StatusUnauthorized},
		{http.MethodPost, "/api/ads", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/ads", http.StatusUnauthorized},
		{http.MethodGet, "/api/permissions/registry", http.StatusUnauthorized},
		{http.MethodGet, "/api/notifications", http.StatusUnauthorized},
		{http.MethodGet, "/api/does-not-exist", http.StatusNotFound},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, tc.status, w.Code, "%s %s: %s", tc.method, tc.path, w.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	router.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)

	body := metricsRec.Body.String()
	require.True(t, strings.Contains(body, `classifieds_api_latency_seconds_count{method="GET",path="/health",status="200"}`), body)
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(nil, nil, nil, nil, nil)
	require.Error(t, err)
}
