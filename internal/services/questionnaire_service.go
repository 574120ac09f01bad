package services

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// QuestionnaireService owns the draft/publish lifecycle and the response
// intake the aggregation pipeline reads from.
// #IMPLEMENTATION_DECISION: Publishing snapshots the draft; versions are immutable
type QuestionnaireService interface {
	// Create creates a new draft questionnaire for an organization
	Create(ctx context.Context, q *models.Questionnaire) error

	// GetForOrganization finds a questionnaire and enforces ownership
	GetForOrganization(ctx context.Context, orgID, id primitive.ObjectID) (*models.Questionnaire, error)

	// List lists an organization's questionnaires
	List(ctx context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error)

	// Publish snapshots the draft into a new immutable version
	Publish(ctx context.Context, orgID, id primitive.ObjectID) (*models.QuestionnaireVersion, error)

	// ListVersions lists a questionnaire's published versions, newest first
	ListVersions(ctx context.Context, orgID, id primitive.ObjectID) ([]models.QuestionnaireVersion, error)

	// AddTranslation attaches a translation to the current version
	AddTranslation(ctx context.Context, orgID, id primitive.ObjectID, language string, t *models.Translation) error

	// Languages returns the languages the current version is available in,
	// master first, translations sorted
	Languages(ctx context.Context, orgID, id primitive.ObjectID) ([]string, error)

	// SubmitResponse stores a raw participant response
	SubmitResponse(ctx context.Context, questionnaireID primitive.ObjectID, r *models.RawResponse) error
}

// questionnaireService implements QuestionnaireService
type questionnaireService struct {
	questionnaireRepo repository.QuestionnaireRepository
	versionRepo       repository.VersionRepository
	responseRepo      repository.ResponseRepository
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(
	questionnaireRepo repository.QuestionnaireRepository,
	versionRepo repository.VersionRepository,
	responseRepo repository.ResponseRepository,
) QuestionnaireService {
	return &questionnaireService{
		questionnaireRepo: questionnaireRepo,
		versionRepo:       versionRepo,
		responseRepo:      responseRepo,
	}
}

// Compile-time interface check
var _ QuestionnaireService = (*questionnaireService)(nil)

// Create creates a new draft questionnaire
func (s *questionnaireService) Create(ctx context.Context, q *models.Questionnaire) error {
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if err := validateSchema(&q.Schema); err != nil {
		return err
	}
	return s.questionnaireRepo.Create(ctx, q)
}

// GetForOrganization finds a questionnaire owned by the organization
// #BUSINESS_RULE: Cross-tenant reads answer 404, not 403, to avoid leaking existence
func (s *questionnaireService) GetForOrganization(ctx context.Context, orgID, id primitive.ObjectID) (*models.Questionnaire, error) {
	q, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.OrganizationID != orgID {
		return nil, models.ErrQuestionnaireNotFound
	}
	return q, nil
}

// List lists an organization's questionnaires
func (s *questionnaireService) List(ctx context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error) {
	return s.questionnaireRepo.ListByOrganization(ctx, orgID, opts)
}

// Publish snapshots the draft into a new immutable version
func (s *questionnaireService) Publish(ctx context.Context, orgID, id primitive.ObjectID) (*models.QuestionnaireVersion, error) {
	q, err := s.GetForOrganization(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(&q.Schema); err != nil {
		return nil, err
	}

	version, err := q.Publish()
	if err != nil {
		return nil, err
	}

	// Version first; a failed draft update leaves an orphaned version
	// number that the next publish simply skips
	if err := s.versionRepo.CreateVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}
	if err := s.questionnaireRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to update draft after publish: %w", err)
	}

	return version, nil
}

// ListVersions lists a questionnaire's published versions
func (s *questionnaireService) ListVersions(ctx context.Context, orgID, id primitive.ObjectID) ([]models.QuestionnaireVersion, error) {
	if _, err := s.GetForOrganization(ctx, orgID, id); err != nil {
		return nil, err
	}
	return s.versionRepo.ListVersions(ctx, id)
}

// AddTranslation attaches a translation to the current version
// #BUSINESS_RULE: The master language never gets a translation row
func (s *questionnaireService) AddTranslation(ctx context.Context, orgID, id primitive.ObjectID, language string, t *models.Translation) error {
	q, err := s.GetForOrganization(ctx, orgID, id)
	if err != nil {
		return err
	}
	if q.CurrentVersion == 0 {
		return models.ErrQuestionnaireNotPublished
	}
	if language == "" {
		return fmt.Errorf("%w: language is required", models.ErrInvalidInput)
	}
	if language == q.MasterLanguage {
		return models.ErrTranslationAlreadyExists
	}

	version, err := s.versionRepo.GetCurrentVersion(ctx, id)
	if err != nil {
		return err
	}

	t.VersionID = version.ID
	t.Language = language
	return s.versionRepo.CreateTranslation(ctx, t)
}

// Languages returns the languages the current version is available in
func (s *questionnaireService) Languages(ctx context.Context, orgID, id primitive.ObjectID) ([]string, error) {
	q, err := s.GetForOrganization(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if q.CurrentVersion == 0 {
		return []string{q.MasterLanguage}, nil
	}

	version, err := s.versionRepo.GetCurrentVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	translations, err := s.versionRepo.ListTranslations(ctx, version.ID)
	if err != nil {
		return nil, err
	}

	langs := make([]string, 0, len(translations))
	for _, t := range translations {
		langs = append(langs, t.Language)
	}
	sort.Strings(langs)
	return append([]string{version.MasterLanguage}, langs...), nil
}

// SubmitResponse stores a raw participant response
// #DATA_ASSUMPTION: Answers arrive unvalidated; the analytics layer drops
// values whose shape contradicts the question type
func (s *questionnaireService) SubmitResponse(ctx context.Context, questionnaireID primitive.ObjectID, r *models.RawResponse) error {
	q, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		return err
	}
	if !q.IsPublished() {
		return models.ErrQuestionnaireNotPublished
	}

	r.QuestionnaireID = questionnaireID
	return s.responseRepo.Create(ctx, r)
}

// validateSchema rejects schemas whose scale questions carry inverted bounds
func validateSchema(schema *models.QuestionnaireSchema) error {
	for si := range schema.Sections {
		for qi := range schema.Sections[si].Questions {
			q := &schema.Sections[si].Questions[qi]
			if q.Type == models.QuestionTypeScale && q.Scale != nil {
				if err := q.Scale.Validate(); err != nil {
					return fmt.Errorf("question %s: %w", q.ID, err)
				}
			}
		}
	}
	return nil
}
