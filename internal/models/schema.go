package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// QuestionType represents the answer type of a question
// #IMPLEMENTATION_DECISION: UPPERCASE in Go code, lowercase in JSON serialization
type QuestionType string

const (
	QuestionTypeScale          QuestionType = "SCALE"
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeRanking        QuestionType = "RANKING"
	QuestionTypeFreeText       QuestionType = "FREE_TEXT"
)

// MarshalJSON converts QuestionType to lowercase for JSON serialization
func (qt QuestionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qt)))
}

// UnmarshalJSON converts lowercase JSON to QuestionType
func (qt *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qt = QuestionType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionType is a valid value
func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionTypeScale, QuestionTypeSingleChoice, QuestionTypeMultipleChoice,
		QuestionTypeRanking, QuestionTypeFreeText:
		return true
	}
	return false
}

// IsChoice returns true for question types answered by picking options
func (qt QuestionType) IsChoice() bool {
	switch qt {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeRanking:
		return true
	}
	return false
}

// DefaultMaxTextLength is applied to free-text questions without an explicit limit
const DefaultMaxTextLength = 500

// ScaleBounds holds the numeric range and endpoint labels of a scale question
type ScaleBounds struct {
	Min      int    `bson:"min" json:"min"`
	Max      int    `bson:"max" json:"max"`
	MinLabel string `bson:"min_label,omitempty" json:"min_label,omitempty"`
	MaxLabel string `bson:"max_label,omitempty" json:"max_label,omitempty"`
}

// Validate checks the bounds invariant
func (s ScaleBounds) Validate() error {
	if s.Min > s.Max {
		return ErrInvalidScaleBounds
	}
	return nil
}

// OptionSet stores the answer options of a choice/ranking question. Current
// questionnaires store a flat ordered list; legacy master-version records
// store a language-code to list mapping from before translations were split
// into their own documents. The option at position i denotes the same
// semantic choice in every language.
// #DATA_ASSUMPTION: Option position is the cross-language alignment key
type OptionSet struct {
	Flat       []string
	ByLanguage map[string][]string
}

// MarshalJSON writes whichever shape the set holds
func (o OptionSet) MarshalJSON() ([]byte, error) {
	if o.ByLanguage != nil {
		return json.Marshal(o.ByLanguage)
	}
	return json.Marshal(o.Flat)
}

// UnmarshalJSON accepts either a flat list or a language map
func (o *OptionSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &o.Flat)
	case '{':
		return json.Unmarshal(trimmed, &o.ByLanguage)
	}
	return ErrInvalidOptionShape
}

// MarshalBSONValue writes whichever shape the set holds
func (o OptionSet) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if o.ByLanguage != nil {
		return bson.MarshalValue(o.ByLanguage)
	}
	return bson.MarshalValue(o.Flat)
}

// UnmarshalBSONValue accepts either a flat array or a language document
func (o *OptionSet) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Array:
		return raw.Unmarshal(&o.Flat)
	case bsontype.EmbeddedDocument:
		return raw.Unmarshal(&o.ByLanguage)
	case bsontype.Null:
		return nil
	}
	return ErrInvalidOptionShape
}

// IsEmpty returns true when no options are stored in either shape
func (o OptionSet) IsEmpty() bool {
	return len(o.Flat) == 0 && len(o.ByLanguage) == 0
}

// Languages returns the stored language codes in sorted order, or nil for
// flat sets
func (o OptionSet) Languages() []string {
	if o.ByLanguage == nil {
		return nil
	}
	langs := make([]string, 0, len(o.ByLanguage))
	for lang := range o.ByLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Resolve returns the ordered option list for the requested language,
// falling back through en, de, then the first stored language. Flat sets
// are language-agnostic and returned as-is.
func (o OptionSet) Resolve(language string) []string {
	if o.ByLanguage == nil {
		return o.Flat
	}
	for _, lang := range []string{language, "en", "de"} {
		if lang == "" {
			continue
		}
		if opts, ok := o.ByLanguage[lang]; ok && len(opts) > 0 {
			return opts
		}
	}
	for _, lang := range o.Languages() {
		if opts := o.ByLanguage[lang]; len(opts) > 0 {
			return opts
		}
	}
	return nil
}

// Question represents a single question within a schema section
type Question struct {
	ID   string       `bson:"id" json:"id"`
	Text string       `bson:"text" json:"text"`
	Type QuestionType `bson:"type" json:"type"`

	// Required defaults to true when absent
	Required *bool `bson:"required,omitempty" json:"required,omitempty"`

	// Type-specific payloads
	Scale     *ScaleBounds `bson:"scale,omitempty" json:"scale,omitempty"`
	Options   *OptionSet   `bson:"options,omitempty" json:"options,omitempty"`
	MaxLength int          `bson:"max_length,omitempty" json:"max_length,omitempty"`
}

// IsRequired returns true unless the question is explicitly optional
func (q *Question) IsRequired() bool {
	return q.Required == nil || *q.Required
}

// MaxTextLength returns the free-text limit, applying the default
func (q *Question) MaxTextLength() int {
	if q.MaxLength > 0 {
		return q.MaxLength
	}
	return DefaultMaxTextLength
}

// ResolveOptions returns the ordered option list in the given language.
// Callers never inspect the underlying storage shape.
func (q *Question) ResolveOptions(language string) []string {
	if q.Options == nil {
		return nil
	}
	return q.Options.Resolve(language)
}

// Section groups consecutive questions under a title. Section and question
// order is significant and preserved through all transforms.
type Section struct {
	ID          string     `bson:"id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Questions   []Question `bson:"questions" json:"questions"`
}

// QuestionnaireSchema is the ordered section/question structure of a
// questionnaire in a single language.
type QuestionnaireSchema struct {
	Sections []Section `bson:"sections" json:"sections"`
}

// QuestionByID finds a question and its owning section, preserving order
func (s *QuestionnaireSchema) QuestionByID(id string) (*Question, *Section) {
	for si := range s.Sections {
		sec := &s.Sections[si]
		for qi := range sec.Questions {
			if sec.Questions[qi].ID == id {
				return &sec.Questions[qi], sec
			}
		}
	}
	return nil, nil
}

// QuestionIDs returns all question ids flattened across sections in order
func (s *QuestionnaireSchema) QuestionIDs() []string {
	ids := make([]string, 0, s.QuestionCount())
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// QuestionIDSet returns the schema's question ids as a lookup set
func (s *QuestionnaireSchema) QuestionIDSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			set[q.ID] = struct{}{}
		}
	}
	return set
}

// QuestionCount returns the total number of questions across all sections
func (s *QuestionnaireSchema) QuestionCount() int {
	count := 0
	for _, sec := range s.Sections {
		count += len(sec.Questions)
	}
	return count
}
