package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/api"
	"github.com/charlesng35/classifieds/internal/app"
	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/cache"
	sharedtestutil "github.com/charlesng35/classifieds/internal/database/testutil"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/pkg/crypto"
	"github.com/charlesng35/classifieds/pkg/response"
)

// DefaultPassword is the password of every user created through the Env.
const DefaultPassword = "Password123!"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Tokens   *iauth.TokenService
	Services *app.Services
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
// Rate limits are disabled so tests can issue bursts of writes.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	tokens, err := iauth.NewTokenService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{}
	svc, err := app.NewServices(db, cache.NewDatabaseStore(db), cfg)
	require.NoError(t, err)

	router, err := api.NewRouter(db, tokens, cfg, svc, nil)
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		Tokens:   tokens,
		Services: svc,
	}
}

// CreateUser inserts an active user with the given role and DefaultPassword.
func (e *Env) CreateUser(role models.Role) *models.User {
	e.T.Helper()

	username := "user-" + uuid.NewString()[:8]
	hashed, err := crypto.HashPassword(DefaultPassword)
	require.NoError(e.T, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// Grant inserts explicit grants for an ADMIN user directly and drops the
// cached principal so the next request sees them.
func (e *Env) Grant(user *models.User, permissionIDs ...string) {
	e.T.Helper()
	for _, id := range permissionIDs {
		require.NoError(e.T, e.DB.Create(&models.PermissionGrant{UserID: user.ID, PermissionID: id}).Error)
	}
	e.Services.Principals.Invalidate(context.Background(), user.ID)
}

// Token issues an access token for the user without going through login.
func (e *Env) Token(user *models.User) string {
	e.T.Helper()
	token, err := e.Tokens.Issue(user.ID, string(user.Role))
	require.NoError(e.T, err)
	return token.AccessToken
}

// CategoryID returns the id of the seeded category with the given slug.
func (e *Env) CategoryID(slug string) string {
	e.T.Helper()
	var category models.Category
	require.NoError(e.T, e.DB.Where("slug = ?", slug).First(&category).Error)
	return category.ID
}

// UserPayload captures the subset of user fields returned from auth endpoints.
type UserPayload struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

// TokenPayload mirrors the issued access token.
type TokenPayload struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginResult bundles the JSON response from POST /api/auth/login.
type LoginResult struct {
	Token TokenPayload `json:"token"`
	User  UserPayload  `json:"user"`
}

// Login authenticates through the API and returns the issued token.
func (e *Env) Login(identifier, password string) LoginResult {
	e.T.Helper()

	payload := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	w := e.Request(http.MethodPost, "/api/auth/login", payload, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Token.AccessToken)
	require.Equal(e.T, "Bearer", result.Token.TokenType)

	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
