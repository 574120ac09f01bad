package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/services"
)

// ReportHandler handles the report lifecycle endpoints
// #INTEGRATION_POINT: Admin portal polls these endpoints while a report generates
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GenerateReportRequest represents the generate report request body
type GenerateReportRequest struct {
	TemplateID      string `json:"template_id" binding:"required"`
	QuestionnaireID string `json:"questionnaire_id" binding:"required"`

	// Force recomputes even when a report already exists for this key
	Force bool `json:"force,omitempty"`
}

// CanGenerateResponse reports whether the minimum-response gate is met
type CanGenerateResponse struct {
	CanGenerate       bool  `json:"can_generate"`
	ResponseCount     int64 `json:"response_count"`
	RequiredResponses int   `json:"required_responses"`
}

// GenerateReport handles POST /api/v1/reports/generate
// @Summary Generate a report
// @Description Computes (or reuses) the report for a template and questionnaire. Aggregation failures land on the report record as status=error.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateReportRequest true "Generate request"
// @Success 200 {object} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/generate [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Template ID and questionnaire ID are required",
		})
		return
	}

	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid template_id format",
		})
		return
	}
	questionnaireID, err := primitive.ObjectIDFromHex(req.QuestionnaireID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid questionnaire_id format",
		})
		return
	}

	report, err := h.reportService.Generate(c.Request.Context(), orgID, templateID, questionnaireID, req.Force)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReport handles GET /api/v1/reports/:id
// @Summary Get a report
// @Description Returns a report record including its status and computed data
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} models.Report
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if report.OrganizationID != orgID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "report not found",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports handles GET /api/v1/questionnaires/:id/reports
// @Summary List reports for a questionnaire
// @Description Lists all report records plus whether new reports can be generated yet
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id}/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Cross-tenant records stay invisible
	visible := reports[:0]
	for _, r := range reports {
		if r.OrganizationID == orgID {
			visible = append(visible, r)
		}
	}

	canGenerate, count, err := h.reportService.CanGenerate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": visible,
		"can_generate": CanGenerateResponse{
			CanGenerate:       canGenerate,
			ResponseCount:     count,
			RequiredResponses: services.MinimumResponses,
		},
	})
}

// RegisterRoutes registers report handler routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	reports := rg.Group("/reports", authMiddleware)
	{
		reports.POST("/generate", h.GenerateReport)
		reports.GET("/:id", h.GetReport)
	}
	rg.GET("/questionnaires/:id/reports", authMiddleware, h.ListReports)
}
