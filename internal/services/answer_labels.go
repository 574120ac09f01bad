package services

import (
	"math"
	"sort"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// Answer label reconciliation. Participants may have answered under any
// translated option set, and answers are persisted either as a positional
// index (current encoding) or as literal option text (legacy encoding).
// Reports present every answer in the version's master language: option
// position is the cross-language key, so a label found at position i in
// any translation resolves to masterOptions[i].

// OptionResolver reconciles one question's option references back to the
// canonical master-language label space.
type OptionResolver struct {
	masterOptions []string
	// language -> that translation's ordered option list for this question
	translated map[string][]string
	languages  []string
}

// NewOptionResolver builds a resolver for a question. masterQuestion comes
// from the master schema; translations carry the same question id in other
// languages. Missing translated option lists are simply skipped.
func NewOptionResolver(masterQuestion *models.Question, masterLanguage string, translations []*models.Translation) *OptionResolver {
	r := &OptionResolver{
		masterOptions: masterQuestion.ResolveOptions(masterLanguage),
		translated:    make(map[string][]string),
	}
	for _, tr := range translations {
		q, _ := tr.Schema.QuestionByID(masterQuestion.ID)
		if q == nil {
			continue
		}
		opts := q.ResolveOptions(tr.Language)
		if len(opts) == 0 {
			continue
		}
		r.translated[tr.Language] = opts
	}
	// Deterministic scan order across translations
	r.languages = make([]string, 0, len(r.translated))
	for lang := range r.translated {
		r.languages = append(r.languages, lang)
	}
	sort.Strings(r.languages)
	return r
}

// MasterOptions returns the canonical ordered option list
func (r *OptionResolver) MasterOptions() []string {
	return r.masterOptions
}

// Resolve maps one option token to its master-language label.
//
// Indices out of [0, len(masterOptions)) are silently dropped (ok=false).
// Legacy strings try the master list first, then every translation; a
// string no translation knows is kept verbatim with unreconciled=true so
// the answer still counts, at the cost of an unnormalized label.
func (r *OptionResolver) Resolve(tok models.OptionToken) (label string, unreconciled bool, ok bool) {
	if tok.IsIndex {
		if tok.Index < 0 || tok.Index >= len(r.masterOptions) {
			return "", false, false
		}
		return r.masterOptions[tok.Index], false, true
	}

	for _, opt := range r.masterOptions {
		if opt == tok.Label {
			return opt, false, true
		}
	}

	for _, lang := range r.languages {
		opts := r.translated[lang]
		for i, opt := range opts {
			if opt != tok.Label {
				continue
			}
			if i < len(r.masterOptions) {
				return r.masterOptions[i], false, true
			}
		}
	}

	return tok.Label, true, true
}

// QuestionAggregate is the per-question output of the aggregation endpoint.
// The populated fields vary by question type; everything else is omitted
// from the serialized payload.
type QuestionAggregate struct {
	QuestionID   string              `json:"question_id"`
	Question     string              `json:"question"`
	SectionTitle string              `json:"section_title,omitempty"`
	Type         models.QuestionType `json:"type"`

	// Number of respondents who answered this question at all
	ResponseCount int `json:"response_count"`

	// Scale. Pointers distinguish a computed 0 (a real value on scales
	// that start at 0) from stats that were never computed at all.
	Average      *float64       `json:"average,omitempty"`
	Median       *float64       `json:"median,omitempty"`
	Min          *float64       `json:"min,omitempty"`
	Max          *float64       `json:"max,omitempty"`
	Distribution map[string]int `json:"distribution,omitempty"`

	// Single / multiple choice
	TopAnswer       string `json:"top_answer,omitempty"`
	TotalSelections int    `json:"total_selections,omitempty"`

	// Ranking (lower average rank = more preferred)
	AverageRanks map[string]float64 `json:"average_ranks,omitempty"`
	RankCounts   map[string]int     `json:"rank_counts,omitempty"`

	// Free text
	Answers []string `json:"answers,omitempty"`

	// Labels kept verbatim because no translation could reconcile them;
	// downstream consumers surface this as a data-quality warning
	Unreconciled int `json:"unreconciled,omitempty"`
}

// summarizeQuestion builds the per-type aggregate for one master-schema
// question over all decoded answers.
func summarizeQuestion(q *models.Question, section *models.Section, answers []models.Answer, resolver *OptionResolver) *QuestionAggregate {
	agg := &QuestionAggregate{
		QuestionID:    q.ID,
		Question:      q.Text,
		Type:          q.Type,
		ResponseCount: len(answers),
	}
	if section != nil {
		agg.SectionTitle = section.Title
	}

	switch q.Type {
	case models.QuestionTypeScale:
		summarizeScale(agg, answers)
	case models.QuestionTypeSingleChoice:
		summarizeSingleChoice(agg, answers, resolver)
	case models.QuestionTypeMultipleChoice:
		summarizeMultipleChoice(agg, answers, resolver)
	case models.QuestionTypeRanking:
		summarizeRanking(agg, answers, resolver)
	case models.QuestionTypeFreeText:
		summarizeFreeText(agg, answers, q.MaxTextLength())
	}
	return agg
}

func summarizeScale(agg *QuestionAggregate, answers []models.Answer) {
	values := make([]float64, 0, len(answers))
	for _, a := range answers {
		if sa, ok := a.(models.ScaleAnswer); ok {
			values = append(values, sa.Value)
		}
	}
	agg.ResponseCount = len(values)
	if len(values) == 0 {
		return
	}
	r := Range(values)
	average := round2(Average(values))
	median := Median(values)
	agg.Average = &average
	agg.Median = &median
	agg.Min = &r.Min
	agg.Max = &r.Max
	agg.Distribution = bucketCounts(Distribution(values))
}

func summarizeSingleChoice(agg *QuestionAggregate, answers []models.Answer, resolver *OptionResolver) {
	labels := make([]string, 0, len(answers))
	answered := 0
	for _, a := range answers {
		ca, ok := a.(models.ChoiceAnswer)
		if !ok {
			continue
		}
		answered++
		label, unreconciled, ok := resolver.Resolve(ca.Option)
		if !ok {
			continue
		}
		if unreconciled {
			agg.Unreconciled++
		}
		labels = append(labels, label)
	}
	agg.ResponseCount = answered
	buckets := countLabels(labels)
	agg.Distribution = bucketCounts(buckets)
	if top, ok := modeOf(buckets); ok {
		agg.TopAnswer = top
	}
}

func summarizeMultipleChoice(agg *QuestionAggregate, answers []models.Answer, resolver *OptionResolver) {
	labels := []string{}
	answered := 0
	for _, a := range answers {
		ma, ok := a.(models.MultiChoiceAnswer)
		if !ok {
			continue
		}
		answered++
		for _, tok := range ma.Options {
			label, unreconciled, ok := resolver.Resolve(tok)
			if !ok {
				continue
			}
			if unreconciled {
				agg.Unreconciled++
			}
			labels = append(labels, label)
		}
	}
	agg.ResponseCount = answered
	agg.TotalSelections = len(labels)
	buckets := countLabels(labels)
	agg.Distribution = bucketCounts(buckets)
	if top, ok := modeOf(buckets); ok {
		agg.TopAnswer = top
	}
}

// summarizeRanking tracks each resolved label's 1-based rank positions.
// Average rank is independent of how often the label was ranked at all.
func summarizeRanking(agg *QuestionAggregate, answers []models.Answer, resolver *OptionResolver) {
	rankSums := make(map[string]float64)
	rankCounts := make(map[string]int)
	answered := 0
	for _, a := range answers {
		ra, ok := a.(models.RankingAnswer)
		if !ok {
			continue
		}
		answered++
		for pos, tok := range ra.Ranked {
			label, unreconciled, ok := resolver.Resolve(tok)
			if !ok {
				continue
			}
			if unreconciled {
				agg.Unreconciled++
			}
			rankSums[label] += float64(pos + 1)
			rankCounts[label]++
		}
	}
	agg.ResponseCount = answered
	if len(rankCounts) == 0 {
		return
	}
	averages := make(map[string]float64, len(rankCounts))
	for label, count := range rankCounts {
		averages[label] = round2(rankSums[label] / float64(count))
	}
	agg.AverageRanks = averages
	agg.RankCounts = rankCounts
}

func summarizeFreeText(agg *QuestionAggregate, answers []models.Answer, maxLength int) {
	texts := []string{}
	for _, a := range answers {
		ta, ok := a.(models.TextAnswer)
		if !ok || ta.Text == "" {
			continue
		}
		text := ta.Text
		// Length limits are client-side only; the stored value is untrusted
		if runes := []rune(text); len(runes) > maxLength {
			text = string(runes[:maxLength])
		}
		texts = append(texts, text)
	}
	agg.ResponseCount = len(texts)
	agg.Answers = texts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
