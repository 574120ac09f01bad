package services

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MappedValue is one extracted answer value attributed to its question and
// participant
type MappedValue struct {
	QuestionID    string
	Value         interface{}
	ParticipantID string
}

// MappingValidation reports schema coverage of a set of data mappings
type MappingValidation struct {
	Valid            bool
	MissingQuestions []string
}

// QuestionMapper extracts per-dimension answer values out of raw responses
// according to a report template's data mappings.
type QuestionMapper struct{}

// NewQuestionMapper creates a new question mapper
func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

// MapQuestionsToData walks every response for every dimension's question
// list, extracts the raw answer value (flat or one level section-nested),
// skips absent answers and applies the mapping's filters. Dimensions with
// no matching data yield an empty list, never an error.
func (m *QuestionMapper) MapQuestionsToData(
	schema *models.QuestionnaireSchema,
	responses []*models.RawResponse,
	mappings map[string]models.DataMapping,
) map[string][]MappedValue {
	out := make(map[string][]MappedValue, len(mappings))
	for dimension, mapping := range mappings {
		values := []MappedValue{}
		for _, resp := range responses {
			if !matchesFilters(resp, mapping.Filters) {
				continue
			}
			for _, questionID := range mapping.QuestionIDs {
				raw, ok := resp.AnswerFor(questionID)
				if !ok {
					continue
				}
				values = append(values, MappedValue{
					QuestionID:    questionID,
					Value:         raw,
					ParticipantID: resp.ParticipantID,
				})
			}
		}
		out[dimension] = values
	}
	return out
}

// ValidateMappings reports every mapped question id absent from the schema.
// Used as a pre-aggregation guard so reports fail naming the bad ids
// instead of silently producing empty dimensions.
func (m *QuestionMapper) ValidateMappings(
	schema *models.QuestionnaireSchema,
	mappings map[string]models.DataMapping,
) MappingValidation {
	known := schema.QuestionIDSet()

	missingSet := make(map[string]struct{})
	for _, mapping := range mappings {
		for _, id := range mapping.QuestionIDs {
			if _, ok := known[id]; !ok {
				missingSet[id] = struct{}{}
			}
		}
	}

	missing := make([]string, 0, len(missingSet))
	for id := range missingSet {
		missing = append(missing, id)
	}
	sort.Strings(missing)

	return MappingValidation{
		Valid:            len(missing) == 0,
		MissingQuestions: missing,
	}
}

// matchesFilters applies a mapping's filters against a response. Array
// expected-values are membership tests; everything else is equality. Keys
// are dot-paths into the response (e.g. "metadata.cohort").
func matchesFilters(resp *models.RawResponse, filters map[string]interface{}) bool {
	for key, expected := range filters {
		actual, ok := resp.FieldByPath(key)
		if !ok {
			return false
		}
		if !matchesExpected(actual, expected) {
			return false
		}
	}
	return true
}

func matchesExpected(actual, expected interface{}) bool {
	switch exp := expected.(type) {
	case []interface{}:
		for _, candidate := range exp {
			if looseEqual(actual, candidate) {
				return true
			}
		}
		return false
	case primitive.A:
		for _, candidate := range exp {
			if looseEqual(actual, candidate) {
				return true
			}
		}
		return false
	}
	return looseEqual(actual, expected)
}

// looseEqual compares across the numeric representations BSON and JSON
// decoding produce; non-numeric values compare by their printed form.
func looseEqual(a, b interface{}) bool {
	na, aNum := models.NumericValue(a)
	nb, bNum := models.NumericValue(b)
	if aNum && bNum {
		return na == nb
	}
	if aNum != bNum {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
