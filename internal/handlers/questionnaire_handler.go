package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/services"
)

// QuestionnaireHandler handles questionnaire lifecycle endpoints
// #INTEGRATION_POINT: Admin portal uses these endpoints for questionnaire management
type QuestionnaireHandler struct {
	questionnaireService services.QuestionnaireService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireService services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaireService: questionnaireService,
	}
}

// CreateQuestionnaireRequest represents the create questionnaire request body
type CreateQuestionnaireRequest struct {
	Title          string                     `json:"title" binding:"required"`
	Description    string                     `json:"description,omitempty"`
	MasterLanguage string                     `json:"master_language,omitempty"`
	Schema         models.QuestionnaireSchema `json:"schema"`
}

// AddTranslationRequest represents the add translation request body
type AddTranslationRequest struct {
	Language    string                     `json:"language" binding:"required"`
	Title       string                     `json:"title" binding:"required"`
	Description string                     `json:"description,omitempty"`
	Schema      models.QuestionnaireSchema `json:"schema"`
}

// SubmitResponseRequest represents a participant response submission
type SubmitResponseRequest struct {
	ParticipantID string                 `json:"participant_id" binding:"required"`
	Answers       map[string]interface{} `json:"answers" binding:"required"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// VersionResponse represents a published version in API responses
type VersionResponse struct {
	ID             string    `json:"id"`
	VersionNumber  int       `json:"version_number"`
	Title          string    `json:"title"`
	MasterLanguage string    `json:"master_language"`
	QuestionCount  int       `json:"question_count"`
	PublishedAt    time.Time `json:"published_at"`
}

// CreateQuestionnaire handles POST /api/v1/questionnaires
// @Summary Create a questionnaire
// @Description Creates a new draft questionnaire
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateQuestionnaireRequest true "Create request"
// @Success 201 {object} models.Questionnaire
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /questionnaires [post]
func (h *QuestionnaireHandler) CreateQuestionnaire(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req CreateQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Title is required",
		})
		return
	}

	questionnaire := &models.Questionnaire{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		MasterLanguage: req.MasterLanguage,
		Schema:         req.Schema,
	}
	if err := h.questionnaireService.Create(c.Request.Context(), questionnaire); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, questionnaire)
}

// ListQuestionnaires handles GET /api/v1/questionnaires
// @Summary List questionnaires
// @Description Lists the organization's questionnaires, paginated
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} repository.PaginatedResult[models.Questionnaire]
// @Failure 401 {object} ErrorResponse
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) ListQuestionnaires(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	opts := repository.DefaultPaginationOptions()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		opts.Limit = limit
	}

	result, err := h.questionnaireService.List(c.Request.Context(), orgID, opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetQuestionnaire handles GET /api/v1/questionnaires/:id
// @Summary Get questionnaire
// @Description Returns the draft questionnaire with its schema
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.Questionnaire
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	questionnaire, err := h.questionnaireService.GetForOrganization(c.Request.Context(), orgID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questionnaire)
}

// PublishQuestionnaire handles POST /api/v1/questionnaires/:id/publish
// @Summary Publish questionnaire
// @Description Snapshots the draft into a new immutable version
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 201 {object} VersionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /questionnaires/{id}/publish [post]
func (h *QuestionnaireHandler) PublishQuestionnaire(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	version, err := h.questionnaireService.Publish(c.Request.Context(), orgID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toVersionResponse(version))
}

// ListVersions handles GET /api/v1/questionnaires/:id/versions
// @Summary List published versions
// @Description Lists a questionnaire's published versions, newest first
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {array} VersionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id}/versions [get]
func (h *QuestionnaireHandler) ListVersions(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	versions, err := h.questionnaireService.ListVersions(c.Request.Context(), orgID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		out = append(out, toVersionResponse(&versions[i]))
	}
	c.JSON(http.StatusOK, out)
}

// AddTranslation handles POST /api/v1/questionnaires/:id/translations
// @Summary Add a translation
// @Description Attaches a translation to the current published version
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body AddTranslationRequest true "Translation"
// @Success 201 {object} models.Translation
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /questionnaires/{id}/translations [post]
func (h *QuestionnaireHandler) AddTranslation(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req AddTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Language and title are required",
		})
		return
	}

	translation := &models.Translation{
		Title:       req.Title,
		Description: req.Description,
		Schema:      req.Schema,
	}
	if err := h.questionnaireService.AddTranslation(c.Request.Context(), orgID, id, req.Language, translation); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, translation)
}

// ListLanguages handles GET /api/v1/questionnaires/:id/languages
// @Summary List available languages
// @Description Lists the languages the current version is available in, master first
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} map[string][]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id}/languages [get]
func (h *QuestionnaireHandler) ListLanguages(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	languages, err := h.questionnaireService.Languages(c.Request.Context(), orgID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

// SubmitResponse handles POST /api/v1/questionnaires/:id/responses
// @Summary Submit a response
// @Description Stores a raw participant response for a published questionnaire
// @Tags Responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body SubmitResponseRequest true "Response"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /questionnaires/{id}/responses [post]
func (h *QuestionnaireHandler) SubmitResponse(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Participant ID and answers are required",
		})
		return
	}

	response := &models.RawResponse{
		ParticipantID: req.ParticipantID,
		Answers:       req.Answers,
		Metadata:      req.Metadata,
	}
	if err := h.questionnaireService.SubmitResponse(c.Request.Context(), id, response); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": response.ID.Hex()})
}

// RegisterRoutes registers questionnaire handler routes
func (h *QuestionnaireHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	questionnaires := rg.Group("/questionnaires", authMiddleware)
	{
		questionnaires.POST("", h.CreateQuestionnaire)
		questionnaires.GET("", h.ListQuestionnaires)
		questionnaires.GET("/:id", h.GetQuestionnaire)
		questionnaires.POST("/:id/publish", h.PublishQuestionnaire)
		questionnaires.GET("/:id/versions", h.ListVersions)
		questionnaires.POST("/:id/translations", h.AddTranslation)
		questionnaires.GET("/:id/languages", h.ListLanguages)
		questionnaires.POST("/:id/responses", h.SubmitResponse)
	}
}

// toVersionResponse converts a version model to its API shape
func toVersionResponse(v *models.QuestionnaireVersion) VersionResponse {
	return VersionResponse{
		ID:             v.ID.Hex(),
		VersionNumber:  v.VersionNumber,
		Title:          v.Title,
		MasterLanguage: v.MasterLanguage,
		QuestionCount:  v.Schema.QuestionCount(),
		PublishedAt:    v.PublishedAt,
	}
}
