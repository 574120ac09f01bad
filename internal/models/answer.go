package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OptionToken references one option of a choice/ranking question, either
// by zero-based position (current encoding) or by literal label text
// (legacy encoding, predating index-based storage).
type OptionToken struct {
	Index   int
	Label   string
	IsIndex bool
}

// IndexToken builds a positional option reference
func IndexToken(i int) OptionToken {
	return OptionToken{Index: i, IsIndex: true}
}

// LabelToken builds a legacy textual option reference
func LabelToken(label string) OptionToken {
	return OptionToken{Label: label}
}

// Answer is the tagged union over the per-question-type answer values.
// Values are decoded against the owning question's declared type before
// any numeric or string branching happens.
type Answer interface {
	isAnswer()
}

// ScaleAnswer is a numeric rating within the question's scale bounds
type ScaleAnswer struct {
	Value float64
}

// ChoiceAnswer is a single selected option
type ChoiceAnswer struct {
	Option OptionToken
}

// MultiChoiceAnswer is a set of selected options
type MultiChoiceAnswer struct {
	Options []OptionToken
}

// RankingAnswer is an ordered list of options; position is the assigned
// rank (1-based)
type RankingAnswer struct {
	Ranked []OptionToken
}

// TextAnswer is an untrusted free-text value
type TextAnswer struct {
	Text string
}

func (ScaleAnswer) isAnswer()       {}
func (ChoiceAnswer) isAnswer()      {}
func (MultiChoiceAnswer) isAnswer() {}
func (RankingAnswer) isAnswer()     {}
func (TextAnswer) isAnswer()        {}

// DecodeAnswer types a raw stored answer value against its question.
// Returns ErrAnswerTypeMismatch when the stored shape cannot belong to the
// question's declared type.
func DecodeAnswer(q *Question, raw interface{}) (Answer, error) {
	switch q.Type {
	case QuestionTypeScale:
		n, ok := NumericValue(raw)
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerTypeMismatch)
		}
		return ScaleAnswer{Value: n}, nil

	case QuestionTypeSingleChoice:
		tok, ok := decodeOptionToken(raw)
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerTypeMismatch)
		}
		return ChoiceAnswer{Option: tok}, nil

	case QuestionTypeMultipleChoice:
		toks, ok := decodeOptionTokens(raw)
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerTypeMismatch)
		}
		return MultiChoiceAnswer{Options: toks}, nil

	case QuestionTypeRanking:
		toks, ok := decodeOptionTokens(raw)
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerTypeMismatch)
		}
		return RankingAnswer{Ranked: toks}, nil

	case QuestionTypeFreeText:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerTypeMismatch)
		}
		return TextAnswer{Text: s}, nil
	}
	return nil, fmt.Errorf("question %s: %w", q.ID, ErrInvalidQuestionType)
}

// NumericValue normalizes the numeric types the Mongo driver and
// encoding/json produce for stored numbers.
func NumericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func decodeOptionToken(v interface{}) (OptionToken, bool) {
	if n, ok := NumericValue(v); ok {
		return IndexToken(int(n)), true
	}
	if s, ok := v.(string); ok {
		return LabelToken(s), true
	}
	return OptionToken{}, false
}

func decodeOptionTokens(v interface{}) ([]OptionToken, bool) {
	var items []interface{}
	switch arr := v.(type) {
	case []interface{}:
		items = arr
	case primitive.A:
		items = arr
	default:
		// A lone index/label is treated as a one-element selection
		if tok, ok := decodeOptionToken(v); ok {
			return []OptionToken{tok}, true
		}
		return nil, false
	}

	toks := make([]OptionToken, 0, len(items))
	for _, item := range items {
		tok, ok := decodeOptionToken(item)
		if !ok {
			return nil, false
		}
		toks = append(toks, tok)
	}
	return toks, true
}
