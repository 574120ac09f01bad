package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// OrganizationHandler handles organization endpoints
// #INTEGRATION_POINT: The frontend resolves the tenant it is scoped to here
type OrganizationHandler struct {
	organizationRepo repository.OrganizationRepository
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationRepo repository.OrganizationRepository) *OrganizationHandler {
	return &OrganizationHandler{
		organizationRepo: organizationRepo,
	}
}

// GetMyOrganization handles GET /api/v1/organizations/me
// @Summary Get the caller's organization
// @Description Returns the organization the authenticated session belongs to
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Organization
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /organizations/me [get]
func (h *OrganizationHandler) GetMyOrganization(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	org, err := h.organizationRepo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// RegisterRoutes registers organization handler routes
func (h *OrganizationHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	organizations := rg.Group("/organizations", authMiddleware)
	{
		organizations.GET("/me", h.GetMyOrganization)
	}
}
