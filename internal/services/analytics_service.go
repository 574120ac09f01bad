package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// NoResponsesMessage is returned (as a success, not an error) when a
// questionnaire has no responses at all
const NoResponsesMessage = "No responses available"

// QuestionAggregateResult is the output of the per-question aggregation
// endpoint. QuestionOrder preserves schema order for consumers that need
// it (the JSON questions map loses ordering on the wire).
type QuestionAggregateResult struct {
	Questions          map[string]*QuestionAggregate `json:"questions"`
	QuestionOrder      []string                      `json:"question_order,omitempty"`
	ResponseCount      int                           `json:"response_count"`
	QuestionnaireTitle string                        `json:"questionnaire_title"`
	Message            string                        `json:"message,omitempty"`
}

// AnalyticsService aggregates raw answers per question, reconciling
// index- and legacy-label-encoded options back to the master language.
// #INTEGRATION_POINT: Feeds the analytics endpoints and the PPTX exporter
type AnalyticsService interface {
	// AggregateQuestions summarizes the selected questions (all schema
	// questions when the selection is empty) across every response. The
	// questionnaire must belong to orgID; foreign ones report not-found.
	AggregateQuestions(ctx context.Context, orgID, questionnaireID primitive.ObjectID, questionIDs []string) (*QuestionAggregateResult, error)
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	questionnaireRepo repository.QuestionnaireRepository
	versionRepo       repository.VersionRepository
	responseRepo      repository.ResponseRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	questionnaireRepo repository.QuestionnaireRepository,
	versionRepo repository.VersionRepository,
	responseRepo repository.ResponseRepository,
) AnalyticsService {
	return &analyticsService{
		questionnaireRepo: questionnaireRepo,
		versionRepo:       versionRepo,
		responseRepo:      responseRepo,
	}
}

// AggregateQuestions summarizes the selected questions across all responses
// #BUSINESS_RULE: Zero responses is a success state, distinct from failures
// #BUSINESS_RULE: A malformed answer never sinks the whole aggregate; it is skipped
func (s *analyticsService) AggregateQuestions(ctx context.Context, orgID, questionnaireID primitive.ObjectID, questionIDs []string) (*QuestionAggregateResult, error) {
	sc, err := loadSchemaContext(ctx, s.questionnaireRepo, s.versionRepo, orgID, questionnaireID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	result := &QuestionAggregateResult{
		Questions:          map[string]*QuestionAggregate{},
		ResponseCount:      len(responses),
		QuestionnaireTitle: sc.Title,
	}
	if len(responses) == 0 {
		result.Message = NoResponsesMessage
		return result, nil
	}

	selected := questionIDs
	if len(selected) == 0 {
		selected = sc.Schema.QuestionIDs()
	}

	for _, questionID := range selected {
		question, section := sc.Schema.QuestionByID(questionID)
		if question == nil {
			// Unknown ids are skipped, not fatal
			continue
		}

		answers := collectAnswers(question, responses)

		var resolver *OptionResolver
		if question.Type.IsChoice() {
			resolver = NewOptionResolver(question, sc.MasterLanguage, sc.Translations)
		}

		result.Questions[questionID] = summarizeQuestion(question, section, answers, resolver)
		result.QuestionOrder = append(result.QuestionOrder, questionID)
	}

	return result, nil
}

// collectAnswers decodes one question's answer from every response that
// carries it, dropping values whose shape contradicts the question type.
func collectAnswers(question *models.Question, responses []*models.RawResponse) []models.Answer {
	answers := make([]models.Answer, 0, len(responses))
	for _, resp := range responses {
		raw, ok := resp.AnswerFor(question.ID)
		if !ok {
			continue
		}
		answer, err := models.DecodeAnswer(question, raw)
		if err != nil {
			continue
		}
		answers = append(answers, answer)
	}
	return answers
}

// Ensure analyticsService implements AnalyticsService
var _ AnalyticsService = (*analyticsService)(nil)
