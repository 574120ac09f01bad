package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// TemplateHandler handles report template endpoints
type TemplateHandler struct {
	templateRepo repository.ReportTemplateRepository
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateRepo repository.ReportTemplateRepository) *TemplateHandler {
	return &TemplateHandler{
		templateRepo: templateRepo,
	}
}

// CreateTemplateRequest represents the create template request body
type CreateTemplateRequest struct {
	Name        string                      `json:"name" binding:"required"`
	Description string                      `json:"description,omitempty"`
	Config      models.ReportTemplateConfig `json:"config" binding:"required"`
}

// CreateTemplate handles POST /api/v1/report-templates
// @Summary Create a report template
// @Description Creates an organization-owned report template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTemplateRequest true "Create request"
// @Success 201 {object} models.ReportTemplate
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /report-templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Name and config are required",
		})
		return
	}

	template := &models.ReportTemplate{
		OrganizationID: &orgID,
		Name:           req.Name,
		Description:    req.Description,
		Config:         req.Config,
	}
	if err := template.Validate(); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.templateRepo.Create(c.Request.Context(), template); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ListTemplates handles GET /api/v1/report-templates
// @Summary List report templates
// @Description Lists the organization's templates plus shared approach-level templates
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReportTemplate
// @Failure 401 {object} ErrorResponse
// @Router /report-templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	templates, err := h.templateRepo.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplate handles GET /api/v1/report-templates/:id
// @Summary Get a report template
// @Description Returns one report template with its full config
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} models.ReportTemplate
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /report-templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	template, err := h.templateRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// Shared templates have no owner; owned ones must match the caller
	if template.OrganizationID != nil && *template.OrganizationID != orgID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: models.ErrReportTemplateNotFound.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, template)
}

// RegisterRoutes registers template handler routes
func (h *TemplateHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	templates := rg.Group("/report-templates", authMiddleware)
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
	}
}
