package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// MinimumResponses is the uniform minimum-sample-size gate. Aggregation,
// renderer validation and the report-listing CanGenerate check all consult
// this constant; diverging values would let the UI offer reports that fail
// at render time.
const MinimumResponses = 5

// InsufficientDataError signals that a questionnaire has too few responses
// to aggregate. It is an expected, user-visible state ("not enough
// responses yet"), not a failure.
type InsufficientDataError struct {
	Got     int
	Minimum int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d responses, minimum is %d", e.Got, e.Minimum)
}

// MappingValidationError names the mapped question ids missing from the
// schema. Raised before any per-dimension work happens.
type MappingValidationError struct {
	MissingQuestions []string
}

func (e *MappingValidationError) Error() string {
	return fmt.Sprintf("data mappings reference unknown questions: %s", strings.Join(e.MissingQuestions, ", "))
}

// AggregationContext is everything a custom aggregator receives for one
// dimension.
type AggregationContext struct {
	QuestionIDs []string
	Responses   []*models.RawResponse
	Values      []MappedValue
	Scale       *models.ScaleRange
	Weights     map[string]float64
	Filters     map[string]interface{}
}

// CustomAggregator computes one dimension's data from its full context.
// This is the extension point for approach-specific scoring.
type CustomAggregator func(ctx AggregationContext) (models.DimensionData, error)

// AggregationService turns raw responses plus a report template config into
// computed report data.
// #INTEGRATION_POINT: Used by the report generator and exposed for ad hoc analytics
type AggregationService interface {
	// Aggregate computes all configured dimensions for a questionnaire
	// owned by orgID; foreign questionnaires report not-found.
	// Returns *InsufficientDataError below the minimum-response gate and
	// *MappingValidationError for mappings naming unknown questions.
	Aggregate(ctx context.Context, orgID, questionnaireID primitive.ObjectID, cfg models.ReportTemplateConfig) (*models.ComputedReportData, error)
}

// aggregationService implements AggregationService
type aggregationService struct {
	questionnaireRepo repository.QuestionnaireRepository
	versionRepo       repository.VersionRepository
	responseRepo      repository.ResponseRepository
	mapper            *QuestionMapper

	// Populated once at startup, read-only afterwards
	custom map[string]CustomAggregator
}

// NewAggregationService creates a new aggregation service. The custom
// aggregator registry is copied and never mutated afterwards.
func NewAggregationService(
	questionnaireRepo repository.QuestionnaireRepository,
	versionRepo repository.VersionRepository,
	responseRepo repository.ResponseRepository,
	custom map[string]CustomAggregator,
) AggregationService {
	registry := make(map[string]CustomAggregator, len(custom))
	for name, fn := range custom {
		registry[name] = fn
	}
	return &aggregationService{
		questionnaireRepo: questionnaireRepo,
		versionRepo:       versionRepo,
		responseRepo:      responseRepo,
		mapper:            NewQuestionMapper(),
		custom:            registry,
	}
}

// Aggregate computes all configured dimensions for a questionnaire
func (s *aggregationService) Aggregate(ctx context.Context, orgID, questionnaireID primitive.ObjectID, cfg models.ReportTemplateConfig) (*models.ComputedReportData, error) {
	sc, err := loadSchemaContext(ctx, s.questionnaireRepo, s.versionRepo, orgID, questionnaireID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	if len(responses) < MinimumResponses {
		return nil, &InsufficientDataError{Got: len(responses), Minimum: MinimumResponses}
	}

	validation := s.mapper.ValidateMappings(sc.Schema, cfg.DataMappings)
	if !validation.Valid {
		return nil, &MappingValidationError{MissingQuestions: validation.MissingQuestions}
	}

	mapped := s.mapper.MapQuestionsToData(sc.Schema, responses, cfg.DataMappings)

	dimensions := make(map[string]models.DimensionData, len(cfg.DataMappings))
	for _, dimension := range sortedKeys(cfg.DataMappings) {
		mapping := cfg.DataMappings[dimension]
		values := mapped[dimension]

		data, err := s.aggregateDimension(mapping, values, responses)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", dimension, err)
		}
		dimensions[dimension] = data
	}

	var scoreSum float64
	for _, d := range dimensions {
		scoreSum += d.Value
	}
	overall := 0.0
	if len(dimensions) > 0 {
		overall = scoreSum / float64(len(dimensions))
	}

	return &models.ComputedReportData{
		Dimensions:     dimensions,
		OverallScore:   overall,
		ResponseCount:  len(responses),
		CompletionRate: completionRate(sc.Schema, responses),
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// aggregateDimension applies the registered custom aggregator when the
// mapping references one that exists; a referenced-but-unregistered name
// falls through to the built-in path.
func (s *aggregationService) aggregateDimension(mapping models.DataMapping, values []MappedValue, responses []*models.RawResponse) (models.DimensionData, error) {
	if mapping.CustomAggregator != "" {
		if fn, ok := s.custom[mapping.CustomAggregator]; ok {
			return fn(AggregationContext{
				QuestionIDs: mapping.QuestionIDs,
				Responses:   responses,
				Values:      values,
				Scale:       mapping.Scale,
				Weights:     mapping.Weights,
				Filters:     mapping.Filters,
			})
		}
	}
	return s.applyBuiltin(mapping, values)
}

func (s *aggregationService) applyBuiltin(mapping models.DataMapping, values []MappedValue) (models.DimensionData, error) {
	numbers := numericValues(values)

	switch mapping.AggregationType {
	case models.AggregationSum:
		sum := 0.0
		for _, v := range numbers {
			sum += v
		}
		return models.DimensionData{Value: sum, Responses: len(values)}, nil

	case models.AggregationCount:
		return models.DimensionData{Value: float64(len(values)), Responses: len(values)}, nil

	case models.AggregationMedian:
		return models.DimensionData{Value: Median(numbers), Responses: len(values)}, nil

	case models.AggregationMode:
		value := 0.0
		if label, ok := Mode(numbers); ok {
			if parsed, err := strconv.ParseFloat(label, 64); err == nil {
				value = parsed
			}
		}
		return models.DimensionData{Value: value, Responses: len(values)}, nil

	case models.AggregationDistribution:
		return models.DimensionData{
			Value:        Average(numbers),
			Responses:    len(values),
			Distribution: categoricalCounts(values),
		}, nil

	case models.AggregationPercentage:
		return models.DimensionData{
			Value:        Average(numbers),
			Responses:    len(values),
			Distribution: categoricalPercentages(values),
		}, nil

	default:
		// average, custom-without-registration, and anything else
		if len(mapping.Weights) > 0 {
			weights := make([]float64, 0, len(values))
			weighted := make([]float64, 0, len(values))
			for _, v := range values {
				n, ok := models.NumericValue(v.Value)
				if !ok {
					continue
				}
				weight, hasWeight := mapping.Weights[v.QuestionID]
				if !hasWeight {
					weight = 1
				}
				weighted = append(weighted, n)
				weights = append(weights, weight)
			}
			return models.DimensionData{Value: WeightedAverage(weighted, weights), Responses: len(values)}, nil
		}
		return models.DimensionData{Value: Average(numbers), Responses: len(values)}, nil
	}
}

// completionRate is answered leaves over (responses x schema questions),
// recursing one level into section-nested answer objects
func completionRate(schema *models.QuestionnaireSchema, responses []*models.RawResponse) float64 {
	totalQuestions := schema.QuestionCount()
	if totalQuestions == 0 || len(responses) == 0 {
		return 0
	}
	answered := 0
	for _, r := range responses {
		answered += r.AnsweredLeafCount()
	}
	return float64(answered) / float64(len(responses)*totalQuestions)
}

func numericValues(values []MappedValue) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := models.NumericValue(v.Value); ok {
			out = append(out, n)
		}
	}
	return out
}

// categoricalCounts stringifies every mapped value and counts occurrences
func categoricalCounts(values []MappedValue) map[string]float64 {
	out := make(map[string]float64)
	for _, v := range values {
		out[stringifyMapped(v.Value)]++
	}
	return out
}

func categoricalPercentages(values []MappedValue) map[string]float64 {
	counts := categoricalCounts(values)
	total := float64(len(values))
	if total == 0 {
		return counts
	}
	for label, count := range counts {
		counts[label] = count / total * 100
	}
	return counts
}

func stringifyMapped(v interface{}) string {
	if n, ok := models.NumericValue(v); ok {
		return FormatStatValue(n)
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]models.DataMapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ensure aggregationService implements AggregationService
var _ AggregationService = (*aggregationService)(nil)
