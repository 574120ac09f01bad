// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/middleware"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/services"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// pathObjectID parses an ObjectID path parameter, answering 400 itself
// when the value is malformed
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid " + name + " format",
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError maps domain errors onto HTTP statuses
// #IMPLEMENTATION_DECISION: errors.Is against sentinels, typed errors for payload detail
func respondServiceError(c *gin.Context, err error) {
	var insufficient *services.InsufficientDataError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "insufficient_data",
			"message":   insufficient.Error(),
			"responses": insufficient.Got,
			"minimum":   insufficient.Minimum,
		})
		return
	}

	var mapping *services.MappingValidationError
	if errors.As(err, &mapping) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "invalid_data_mappings",
			"message":           mapping.Error(),
			"missing_questions": mapping.MissingQuestions,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrQuestionnaireNotFound),
		errors.Is(err, models.ErrVersionNotFound),
		errors.Is(err, models.ErrTranslationNotFound),
		errors.Is(err, models.ErrReportTemplateNotFound),
		errors.Is(err, models.ErrReportNotFound),
		errors.Is(err, models.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidScaleBounds),
		errors.Is(err, models.ErrMissingDataMappings):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrQuestionnaireNotPublished),
		errors.Is(err, models.ErrInvalidStatusTransition),
		errors.Is(err, models.ErrTranslationAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}

// requireOrgID pulls the authenticated organization from context, answering
// 401 itself when the session carries none
func requireOrgID(c *gin.Context) (primitive.ObjectID, bool) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return primitive.NilObjectID, false
	}
	return orgID, true
}
