package middleware

import (
	"context"
	"net/http"
	"strings"

	"todos/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Keys under which the authenticated session is stored on the gin context.
const (
	ContextUserID           = "user_id"
	ContextOrgID            = "org_id"
	ContextRole             = "user_role"
	ContextSessionID        = "session_id"
	ContextSessionExpiresAt = "session_expires_at"
)

// RevocationChecker reports whether a session was revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
// revocations may be nil.
func AuthMiddleware(jwtService *jwt.Service, revocations RevocationChecker) gin.HandlerFunc {
	return authenticate(jwtService, revocations, false)
}

// StreamAuthMiddleware also accepts the token in the "token" query parameter,
// since browser EventSource and WebSocket clients cannot set headers.
func StreamAuthMiddleware(jwtService *jwt.Service, revocations RevocationChecker) gin.HandlerFunc {
	return authenticate(jwtService, revocations, true)
}

func authenticate(jwtService *jwt.Service, revocations RevocationChecker, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.SessionID())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Session check failed"})
				c.Abort()
				return
			}
			if revoked {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextOrgID, claims.OrgID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextSessionID, claims.SessionID())
		if claims.ExpiresAt != nil {
			c.Set(ContextSessionExpiresAt, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole lets the request through only when the session role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		c.Abort()
	}
}
