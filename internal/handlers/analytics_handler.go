package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/services"
)

// AnalyticsHandler handles per-question aggregation and export endpoints
// #INTEGRATION_POINT: Dashboard widgets and the PPTX download both run through here
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService services.AnalyticsService, exportService services.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// AggregateRequest selects the questions to aggregate; an empty selection
// covers every question in the schema
type AggregateRequest struct {
	QuestionIDs []string `json:"question_ids,omitempty"`
}

// AggregateQuestions handles POST /api/v1/questionnaires/:id/analytics/aggregate
// @Summary Aggregate question answers
// @Description Summarizes answers per question, reconciling translated and index-encoded options to the master language
// @Tags Analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body AggregateRequest false "Question selection"
// @Success 200 {object} services.QuestionAggregateResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id}/analytics/aggregate [post]
func (h *AnalyticsHandler) AggregateQuestions(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	// Body is optional; absent means all questions
	var req AggregateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Malformed question selection",
			})
			return
		}
	}

	result, err := h.analyticsService.AggregateQuestions(c.Request.Context(), orgID, id, req.QuestionIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportPPTX handles POST /api/v1/questionnaires/:id/analytics/export-pptx
// @Summary Export aggregates as PowerPoint
// @Description Renders the per-question aggregates into a downloadable pptx deck
// @Tags Analytics
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.presentationml.presentation
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body AggregateRequest false "Question selection"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id}/analytics/export-pptx [post]
func (h *AnalyticsHandler) ExportPPTX(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req AggregateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Malformed question selection",
			})
			return
		}
	}

	// Buffer the deck so failures surface as JSON instead of a torn download
	var buf bytes.Buffer
	if _, err := h.exportService.ExportPPTX(c.Request.Context(), orgID, id, req.QuestionIDs, &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey-results-%s.pptx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		buf.Bytes())
}

// RegisterRoutes registers analytics handler routes. The export route takes
// an extra rate limit because every request renders a full deck.
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, exportLimit gin.HandlerFunc) {
	analytics := rg.Group("/questionnaires/:id/analytics", authMiddleware)
	{
		analytics.POST("/aggregate", h.AggregateQuestions)
		analytics.POST("/export-pptx", exportLimit, h.ExportPPTX)
	}
}
