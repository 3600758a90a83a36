package http

import (
	"errors"
	"net/http"
	"strconv"

	"todos/pkg/logger"
	"todos/pkg/middleware"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
)

// respondError maps use case errors to HTTP statuses. Unknown errors are
// logged and reported as "Failed to <action>".
func respondError(c *gin.Context, log *logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// sessionFrom reads the session that AuthMiddleware stored on the context.
func sessionFrom(c *gin.Context) (entity.Session, bool) {
	s := entity.Session{
		ID:             c.GetString(middleware.ContextSessionID),
		UserID:         c.GetString(middleware.ContextUserID),
		OrganizationID: c.GetString(middleware.ContextOrgID),
		Role:           entity.Role(c.GetString(middleware.ContextRole)),
		ExpiresAt:      c.GetTime(middleware.ContextSessionExpiresAt),
	}
	if s.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return s, false
	}
	return s, true
}

func pagination(c *gin.Context) (int, int) {
	limit, offset := 0, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
