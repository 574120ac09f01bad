package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// ReportService owns the persistence lifecycle of computed reports:
// pending -> generating -> ready | error.
// #INTEGRATION_POINT: Used by the report handler for the report lifecycle API
type ReportService interface {
	// Generate computes (or reuses) the report for (organization,
	// template, questionnaire). With force=false an existing record is
	// returned unchanged without recomputation. Aggregation failures are
	// persisted on the record, never raised to the caller.
	Generate(ctx context.Context, orgID, templateID, questionnaireID primitive.ObjectID, force bool) (*models.Report, error)

	// GetReport retrieves a report by ID
	GetReport(ctx context.Context, id primitive.ObjectID) (*models.Report, error)

	// ListReports lists all reports for a questionnaire
	ListReports(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.Report, error)

	// CanGenerate reports whether the questionnaire has reached the
	// minimum-response gate, along with the current response count
	CanGenerate(ctx context.Context, questionnaireID primitive.ObjectID) (bool, int64, error)
}

// reportService implements ReportService
type reportService struct {
	reportRepo        repository.ReportRepository
	templateRepo      repository.ReportTemplateRepository
	questionnaireRepo repository.QuestionnaireRepository
	responseRepo      repository.ResponseRepository
	aggregator        AggregationService
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo repository.ReportRepository,
	templateRepo repository.ReportTemplateRepository,
	questionnaireRepo repository.QuestionnaireRepository,
	responseRepo repository.ResponseRepository,
	aggregator AggregationService,
) ReportService {
	return &reportService{
		reportRepo:        reportRepo,
		templateRepo:      templateRepo,
		questionnaireRepo: questionnaireRepo,
		responseRepo:      responseRepo,
		aggregator:        aggregator,
	}
}

// Generate computes or reuses the report for its key
// #BUSINESS_RULE: force=false returns the existing record untouched (at-most-one-fresh-computation)
// #CONCURRENCY_NOTE: No lock around the exists-check; concurrent generators
// may both compute and the last write wins. Computation is a pure function
// of immutable inputs, so the duplicate work is wasteful but never corrupt.
func (s *reportService) Generate(ctx context.Context, orgID, templateID, questionnaireID primitive.ObjectID, force bool) (*models.Report, error) {
	existing, err := s.reportRepo.GetByKey(ctx, orgID, templateID, questionnaireID)
	if err != nil && err != models.ErrReportNotFound {
		return nil, fmt.Errorf("failed to look up report: %w", err)
	}
	if existing != nil && !force {
		return existing, nil
	}

	// Config problems surface before any generating record exists
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	// Shared templates have no owner; owned ones must match the caller
	if template.OrganizationID != nil && *template.OrganizationID != orgID {
		return nil, models.ErrReportTemplateNotFound
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}

	// Ownership surfaces before any generating record exists, the same as
	// config problems; a foreign questionnaire reads as not-found
	questionnaire, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if questionnaire.OrganizationID != orgID {
		return nil, models.ErrQuestionnaireNotFound
	}

	report := existing
	if report == nil {
		report = &models.Report{
			OrganizationID:  orgID,
			TemplateID:      templateID,
			QuestionnaireID: questionnaireID,
		}
		report.BeforeCreate()
	}
	report.MarkGenerating()
	if err := s.reportRepo.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	data, aggErr := s.aggregator.Aggregate(ctx, orgID, questionnaireID, template.Config)
	if aggErr != nil {
		// Persist the failure; callers observe it via the record's status
		report.MarkError(aggErr.Error())
		if err := s.reportRepo.Update(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to store report error state: %w", err)
		}
		return report, nil
	}

	report.MarkReady(data)
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store computed report: %w", err)
	}
	return report, nil
}

// GetReport retrieves a report by ID
func (s *reportService) GetReport(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

// ListReports lists all reports for a questionnaire
func (s *reportService) ListReports(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.Report, error) {
	return s.reportRepo.ListByQuestionnaire(ctx, questionnaireID)
}

// CanGenerate applies the same minimum-response gate as aggregation and
// rendering, so the UI never offers a report that cannot be computed
func (s *reportService) CanGenerate(ctx context.Context, questionnaireID primitive.ObjectID) (bool, int64, error) {
	count, err := s.responseRepo.CountByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return false, 0, err
	}
	return count >= MinimumResponses, count, nil
}

// Ensure reportService implements ReportService
var _ ReportService = (*reportService)(nil)
