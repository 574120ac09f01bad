package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// schemaContext is the resolved schema a pipeline run aggregates against:
// the latest published snapshot with its translations when one exists,
// otherwise the live draft (which has no translations yet).
type schemaContext struct {
	Title          string
	Schema         *models.QuestionnaireSchema
	MasterLanguage string
	Translations   []*models.Translation
}

// loadSchemaContext fetches the effective schema for a questionnaire.
// #BUSINESS_RULE: Cross-tenant questionnaires are indistinguishable from
// missing ones, so foreign ObjectIDs leak nothing
func loadSchemaContext(
	ctx context.Context,
	questionnaireRepo repository.QuestionnaireRepository,
	versionRepo repository.VersionRepository,
	orgID, questionnaireID primitive.ObjectID,
) (*schemaContext, error) {
	questionnaire, err := questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}
	if questionnaire.OrganizationID != orgID {
		return nil, models.ErrQuestionnaireNotFound
	}

	if questionnaire.CurrentVersion == 0 {
		return &schemaContext{
			Title:          questionnaire.Title,
			Schema:         &questionnaire.Schema,
			MasterLanguage: questionnaire.MasterLanguage,
		}, nil
	}

	version, err := versionRepo.GetCurrentVersion(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}
	translations, err := versionRepo.ListTranslations(ctx, version.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}

	return &schemaContext{
		Title:          version.Title,
		Schema:         &version.Schema,
		MasterLanguage: version.MasterLanguage,
		Translations:   translations,
	}, nil
}
