// Package repository defines interfaces for data access and their MongoDB implementations
// #ORM_PATTERN: Repository pattern with interfaces for testability and abstraction
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// PaginationOptions contains pagination parameters
type PaginationOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir int // 1 for ascending, -1 for descending
}

// DefaultPaginationOptions returns default pagination settings
// #DATA_ASSUMPTION: Pagination defaults to 20 items per page
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		Page:    1,
		Limit:   20,
		SortBy:  "created_at",
		SortDir: -1,
	}
}

// PaginatedResult contains paginated query results
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// OrganizationRepository defines operations for organizations
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// GetByID finds an organization by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)

	// GetBySlug finds an organization by slug
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error
}

// QuestionnaireRepository defines operations for questionnaire drafts
// #QUERY_INTERFACE: The draft row carries the editable schema
type QuestionnaireRepository interface {
	// Create creates a new questionnaire draft
	Create(ctx context.Context, q *models.Questionnaire) error

	// GetByID finds a questionnaire by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Questionnaire, error)

	// Update updates a questionnaire draft
	Update(ctx context.Context, q *models.Questionnaire) error

	// ListByOrganization lists an organization's questionnaires
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Questionnaire], error)
}

// VersionRepository defines operations for published version snapshots and
// their translations
type VersionRepository interface {
	// CreateVersion inserts an immutable version snapshot
	CreateVersion(ctx context.Context, v *models.QuestionnaireVersion) error

	// GetVersion finds a version by ID
	GetVersion(ctx context.Context, id primitive.ObjectID) (*models.QuestionnaireVersion, error)

	// GetCurrentVersion finds the highest-numbered version of a questionnaire
	GetCurrentVersion(ctx context.Context, questionnaireID primitive.ObjectID) (*models.QuestionnaireVersion, error)

	// ListVersions lists a questionnaire's versions, newest first
	ListVersions(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.QuestionnaireVersion, error)

	// CreateTranslation inserts a translation for a version
	CreateTranslation(ctx context.Context, t *models.Translation) error

	// ListTranslations lists all translations of a version
	ListTranslations(ctx context.Context, versionID primitive.ObjectID) ([]*models.Translation, error)
}

// ResponseRepository defines operations for raw participant responses
// #DATA_ASSUMPTION: Aggregation loads the full response set in memory, no pagination
type ResponseRepository interface {
	// Create inserts a new response
	Create(ctx context.Context, r *models.RawResponse) error

	// ListByQuestionnaire lists all responses for a questionnaire
	ListByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) ([]*models.RawResponse, error)

	// CountByQuestionnaire counts responses for a questionnaire
	CountByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) (int64, error)
}

// ReportTemplateRepository defines operations for report templates
type ReportTemplateRepository interface {
	// Create creates a new report template
	Create(ctx context.Context, t *models.ReportTemplate) error

	// GetByID finds a report template by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ReportTemplate, error)

	// ListForOrganization lists templates visible to an organization
	// (its own plus approach-level templates without an owner)
	ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.ReportTemplate, error)
}

// ReportRepository defines operations for computed report records
type ReportRepository interface {
	// GetByID finds a report by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)

	// GetByKey finds the report for (organization, template, questionnaire)
	GetByKey(ctx context.Context, orgID, templateID, questionnaireID primitive.ObjectID) (*models.Report, error)

	// Upsert writes a report record keyed by (organization, template,
	// questionnaire), overwriting any previous record in place
	Upsert(ctx context.Context, report *models.Report) error

	// Update updates an existing report record
	Update(ctx context.Context, report *models.Report) error

	// ListByQuestionnaire lists all reports for a questionnaire
	ListByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.Report, error)
}
