package http

import (
	"net/http"

	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	organizationUseCase usecase.OrganizationUseCase
	logger              *logger.Logger
}

func NewOrganizationHandler(organizationUseCase usecase.OrganizationUseCase, logger *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		organizationUseCase: organizationUseCase,
		logger:              logger,
	}
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member"`
}

// ListOrganizations godoc
// @Summary      List organizations
// @Description  Organizations the caller belongs to, with the caller's role in each
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	memberships, err := h.organizationUseCase.ListOrganizations(c.Request.Context(), session)
	if err != nil {
		respondError(c, h.logger, err, "list organizations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": memberships,
		"current":       session.OrganizationID,
	})
}

// CreateOrganization godoc
// @Summary      Create an organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateOrganizationRequest true "Organization"
// @Success      201  {object}  entity.Membership
// @Router       /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.organizationUseCase.CreateOrganization(c.Request.Context(), session, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "create organization")
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// SwitchOrganization godoc
// @Summary      Switch the active organization
// @Description  Returns a new session token acting in the given organization
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Organization ID"
// @Success      200  {object}  entity.AuthResult
// @Failure      403  {object}  map[string]string
// @Router       /organizations/{id}/switch [post]
func (h *OrganizationHandler) SwitchOrganization(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	result, err := h.organizationUseCase.SwitchOrganization(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "switch organization")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMembers godoc
// @Summary      List members of the active organization
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /organizations/current/members [get]
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	members, err := h.organizationUseCase.ListMembers(c.Request.Context(), session)
	if err != nil {
		respondError(c, h.logger, err, "list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"count":   len(members),
	})
}

// AddMember godoc
// @Summary      Add a member to the active organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddMemberRequest true "Member"
// @Success      201  {object}  entity.Member
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /organizations/current/members [post]
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.organizationUseCase.AddMember(c.Request.Context(), session, req.Email, entity.Role(req.Role))
	if err != nil {
		respondError(c, h.logger, err, "add member")
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RemoveMember godoc
// @Summary      Remove a member from the active organization
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /organizations/current/members/{user_id} [delete]
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	if err := h.organizationUseCase.RemoveMember(c.Request.Context(), session, c.Param("user_id")); err != nil {
		respondError(c, h.logger, err, "remove member")
		return
	}

	c.Status(http.StatusNoContent)
}
