package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_paygate/internal/config"
	"github.com/GTDGit/gtd_paygate/internal/repository"
	"github.com/GTDGit/gtd_paygate/internal/service"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	repo := repository.NewMemoryClientRepository()
	require.NoError(t, service.NewClientService(repo, bcrypt.MinCost).Seed(context.Background(), []config.ClientSeed{
		{ClientID: "client1", Secret: "password1", Roles: []string{"admin"}},
		{ClientID: "client2", Secret: "password2", Roles: []string{"read-only"}},
	}))
	return service.NewAuthService(repo, "secret", time.Hour)
}

func newRouter(auth *service.AuthService) *gin.Engine {
	r := gin.New()
	jwtMw := NewJWTMiddleware(auth)
	r.GET("/me", jwtMw.Handle(), func(c *gin.Context) {
		c.JSON(200, GetPrincipal(c))
	})
	r.GET("/admin", jwtMw.Handle(), RequireRole(service.RoleAdmin), func(c *gin.Context) {
		c.Status(204)
	})
	return r
}

func doGet(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func issue(t *testing.T, auth *service.AuthService, id, secret string) string {
	t.Helper()
	tok, err := auth.Issue(context.Background(), id, secret)
	require.NoError(t, err)
	return tok.AccessToken
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestJWTMiddleware(t *testing.T) {
	auth := newAuthService(t)
	r := newRouter(auth)

	w := doGet(r, "/me", "")
	assert.Equal(t, 401, w.Code)
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Token is missing", body.Error)

	w = doGet(r, "/me", "Bearer not-a-token")
	assert.Equal(t, 401, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body.Error)

	w = doGet(r, "/me", "Bearer "+issue(t, auth, "client2", "password2"))
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"clientId":"client2","roles":["read-only"]}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	auth := newAuthService(t)
	r := newRouter(auth)

	w := doGet(r, "/admin", "Bearer "+issue(t, auth, "client2", "password2"))
	assert.Equal(t, 403, w.Code)

	w = doGet(r, "/admin", "Bearer "+issue(t, auth, "client1", "password1"))
	assert.Equal(t, 204, w.Code)
}

func TestJWTMiddlewareRepeatedFailuresStayUnauthorized(t *testing.T) {
	r := newRouter(newAuthService(t))

	for i := 0; i < 20; i++ {
		w := doGet(r, "/me", "")
		require.Equal(t, 401, w.Code, "request %d", i+1)
		assert.Contains(t, w.Body.String(), "Token is missing")
	}
	assert.Equal(t, 401, doGet(r, "/me", "Bearer bad").Code)
}

func TestInvalidAuthRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewInvalidAuthRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.attempts)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
