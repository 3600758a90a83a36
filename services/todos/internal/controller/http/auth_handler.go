package http

import (
	"net/http"

	"todos/pkg/logger"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates the user, a personal organization owned by the user, and returns a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  entity.AuthResult
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authUseCase.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login godoc
// @Summary      Log in
// @Description  Returns a session token for the user's oldest organization
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  entity.AuthResult
// @Failure      401  {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "log in")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), session); err != nil {
		respondError(c, h.logger, err, "log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
