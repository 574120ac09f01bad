package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/pptx"
)

// ExportService turns per-question aggregates into a PowerPoint deck
type ExportService interface {
	// ExportPPTX writes a deck for the given questionnaire to w and
	// returns the number of slides written. The questionnaire must belong
	// to orgID; foreign ones report not-found.
	ExportPPTX(ctx context.Context, orgID, questionnaireID primitive.ObjectID, questionIDs []string, w io.Writer) (int, error)
}

// exportService implements ExportService on top of the analytics aggregates
type exportService struct {
	analytics AnalyticsService
}

// NewExportService creates a new export service
func NewExportService(analytics AnalyticsService) ExportService {
	return &exportService{analytics: analytics}
}

// ExportPPTX builds the deck: one title slide, a divider per section and
// one content slide per aggregated question.
// #BUSINESS_RULE: Exports with zero responses still produce a valid deck
// stating that no responses are available
func (s *exportService) ExportPPTX(ctx context.Context, orgID, questionnaireID primitive.ObjectID, questionIDs []string, w io.Writer) (int, error) {
	result, err := s.analytics.AggregateQuestions(ctx, orgID, questionnaireID, questionIDs)
	if err != nil {
		return 0, err
	}

	deck := pptx.NewDeck()
	deck.AddSlide(titleSlide(result))

	// Section dividers in first-occurrence order; QuestionOrder carries
	// the schema ordering the JSON map would lose
	currentSection := ""
	for _, questionID := range result.QuestionOrder {
		agg, ok := result.Questions[questionID]
		if !ok {
			continue
		}
		if agg.SectionTitle != "" && agg.SectionTitle != currentSection {
			currentSection = agg.SectionTitle
			deck.AddSlide(pptx.Slide{Title: currentSection})
		}
		deck.AddSlide(questionSlide(agg))
	}

	count := deck.SlideCount()
	if err := deck.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write deck: %w", err)
	}
	return count, nil
}

func titleSlide(result *QuestionAggregateResult) pptx.Slide {
	body := []pptx.Paragraph{
		{Text: fmt.Sprintf("Responses: %d", result.ResponseCount)},
		{Text: fmt.Sprintf("Generated: %s", time.Now().UTC().Format("2006-01-02"))},
	}
	if result.Message != "" {
		body = append(body, pptx.Paragraph{Text: result.Message, Bold: true})
	}
	return pptx.Slide{Title: result.QuestionnaireTitle, Body: body}
}

func questionSlide(agg *QuestionAggregate) pptx.Slide {
	body := []pptx.Paragraph{
		{Text: fmt.Sprintf("Answered by %d respondents", agg.ResponseCount)},
	}

	switch agg.Type {
	case models.QuestionTypeScale:
		body = append(body, scaleBody(agg)...)
	case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
		body = append(body, choiceBody(agg)...)
	case models.QuestionTypeRanking:
		body = append(body, rankingBody(agg)...)
	case models.QuestionTypeFreeText:
		body = append(body, freeTextBody(agg)...)
	}

	if agg.Unreconciled > 0 {
		body = append(body, pptx.Paragraph{
			Text: fmt.Sprintf("%d answers kept verbatim (no matching option)", agg.Unreconciled),
		})
	}
	return pptx.Slide{Title: agg.Question, Body: body}
}

func scaleBody(agg *QuestionAggregate) []pptx.Paragraph {
	var paras []pptx.Paragraph
	if agg.Average != nil && agg.Median != nil {
		paras = append(paras, pptx.Paragraph{
			Text: fmt.Sprintf("Average %s, median %s", FormatStatValue(*agg.Average), FormatStatValue(*agg.Median)),
			Bold: true,
		})
	}
	if agg.Min != nil && agg.Max != nil {
		paras = append(paras, pptx.Paragraph{
			Text: fmt.Sprintf("Range %s to %s", FormatStatValue(*agg.Min), FormatStatValue(*agg.Max)),
		})
	}
	return append(paras, countLines(agg.Distribution, "%s: %d")...)
}

func choiceBody(agg *QuestionAggregate) []pptx.Paragraph {
	var paras []pptx.Paragraph
	if agg.TopAnswer != "" {
		paras = append(paras, pptx.Paragraph{Text: fmt.Sprintf("Most chosen: %s", agg.TopAnswer), Bold: true})
	}
	if agg.TotalSelections > 0 {
		paras = append(paras, pptx.Paragraph{Text: fmt.Sprintf("Total selections: %d", agg.TotalSelections)})
	}
	return append(paras, countLines(agg.Distribution, "%s: %d")...)
}

func rankingBody(agg *QuestionAggregate) []pptx.Paragraph {
	// Lower average rank means more preferred, so sort ascending
	type ranked struct {
		label string
		avg   float64
	}
	items := make([]ranked, 0, len(agg.AverageRanks))
	for label, avg := range agg.AverageRanks {
		items = append(items, ranked{label, avg})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].avg != items[j].avg {
			return items[i].avg < items[j].avg
		}
		return items[i].label < items[j].label
	})

	paras := make([]pptx.Paragraph, 0, len(items))
	for i, item := range items {
		paras = append(paras, pptx.Paragraph{
			Text: fmt.Sprintf("%d. %s (average rank %s)", i+1, item.label, FormatStatValue(item.avg)),
			Bold: i == 0,
		})
	}
	return paras
}

// freeTextBody lists at most a handful of answers so a single slide
// never overflows
const maxTextAnswersPerSlide = 8

func freeTextBody(agg *QuestionAggregate) []pptx.Paragraph {
	answers := agg.Answers
	omitted := 0
	if len(answers) > maxTextAnswersPerSlide {
		omitted = len(answers) - maxTextAnswersPerSlide
		answers = answers[:maxTextAnswersPerSlide]
	}
	paras := make([]pptx.Paragraph, 0, len(answers)+1)
	for _, a := range answers {
		paras = append(paras, pptx.Paragraph{Text: fmt.Sprintf("“%s”", a), Level: 1})
	}
	if omitted > 0 {
		paras = append(paras, pptx.Paragraph{Text: fmt.Sprintf("and %d more answers", omitted)})
	}
	return paras
}

// countLines renders distribution buckets one per line. Scale buckets carry
// numeric labels and read in value order; categorical buckets read in
// descending count order so the most chosen option leads.
func countLines(counts map[string]int, format string) []pptx.Paragraph {
	labels := make([]string, 0, len(counts))
	numeric := true
	for label := range counts {
		labels = append(labels, label)
		if _, err := strconv.ParseFloat(label, 64); err != nil {
			numeric = false
		}
	}

	if numeric {
		sort.Slice(labels, func(i, j int) bool {
			a, _ := strconv.ParseFloat(labels[i], 64)
			b, _ := strconv.ParseFloat(labels[j], 64)
			return a < b
		})
	} else {
		sort.Slice(labels, func(i, j int) bool {
			if counts[labels[i]] != counts[labels[j]] {
				return counts[labels[i]] > counts[labels[j]]
			}
			return labels[i] < labels[j]
		})
	}

	paras := make([]pptx.Paragraph, 0, len(labels))
	for _, label := range labels {
		paras = append(paras, pptx.Paragraph{Text: fmt.Sprintf(format, label, counts[label]), Level: 1})
	}
	return paras
}
