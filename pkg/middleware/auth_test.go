package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todos/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	return f.revoked[sessionID], f.err
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newSessionRouter(mw gin.HandlerFunc) *gin.Engine {
	router := setupTestRouter()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"org_id":  c.GetString(ContextOrgID),
			"role":    c.GetString(ContextRole),
		})
	})
	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	token, _ := jwtService.GenerateToken("user-123", "org-1", "admin")

	router := newSessionRouter(AuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-123"`)
	assert.Contains(t, w.Body.String(), `"org_id":"org-1"`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	router := newSessionRouter(AuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	router := newSessionRouter(AuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	router := newSessionRouter(AuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_QueryTokenRejectedOnRegularRoutes(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	token, _ := jwtService.GenerateToken("user-123", "org-1", "member")
	router := newSessionRouter(AuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test?token="+token, nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamAuthMiddleware_QueryToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	token, _ := jwtService.GenerateToken("user-123", "org-1", "member")
	router := newSessionRouter(StreamAuthMiddleware(jwtService, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test?token="+token, nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RevokedSession(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	token, _ := jwtService.GenerateToken("user-123", "org-1", "member")
	claims, _ := jwtService.ValidateToken(token)

	revocations := &fakeRevocations{revoked: map[string]bool{claims.SessionID(): true}}
	router := newSessionRouter(AuthMiddleware(jwtService, revocations))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAuthMiddleware_RevocationCheckFails(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour)
	token, _ := jwtService.GenerateToken("user-123", "org-1", "member")

	revocations := &fakeRevocations{err: errors.New("redis down")}
	router := newSessionRouter(AuthMiddleware(jwtService, revocations))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "owner allowed", role: "owner", want: http.StatusOK},
		{name: "admin allowed", role: "admin", want: http.StatusOK},
		{name: "member forbidden", role: "member", want: http.StatusForbidden},
		{name: "missing role forbidden", role: "", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/admin", func(c *gin.Context) {
				c.Set(ContextRole, tt.role)
				c.Next()
			}, RequireRole("owner", "admin"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/admin", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
