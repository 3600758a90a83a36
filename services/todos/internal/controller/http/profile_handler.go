package http

import (
	"net/http"

	"todos/pkg/logger"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase usecase.ProfileUseCase
	logger         *logger.Logger
}

func NewProfileHandler(profileUseCase usecase.ProfileUseCase, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// Me godoc
// @Summary      Current user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	user, err := h.profileUseCase.Me(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, h.logger, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"organization_id": session.OrganizationID,
		"role":            session.Role,
	})
}

// UpdateProfile godoc
// @Summary      Update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile"
// @Success      200  {object}  entity.User
// @Router       /me [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profileUseCase.UpdateProfile(c.Request.Context(), session.UserID, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Upload an avatar image (jpg, jpeg, png, gif, webp; up to 5 MiB)
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Router       /me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxAvatarSize+1<<20)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required (max 5 MiB)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open avatar upload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	user, err := h.profileUseCase.UploadAvatar(c.Request.Context(), session.UserID, usecase.AvatarUpload{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		respondError(c, h.logger, err, "upload avatar")
		return
	}

	c.JSON(http.StatusOK, user)
}
