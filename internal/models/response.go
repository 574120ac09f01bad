package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RawResponse is one participant's answer record for a questionnaire.
// Answer values are stored as submitted and typed only against the owning
// question's declared type (see DecodeAnswer). Keys of the answers map are
// a subset of the schema's question ids; optional questions may be absent.
// Some older records nest answers one level under a section id.
type RawResponse struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`

	// Token-bound participant identity, anonymous or named
	ParticipantID string `bson:"participant_id" json:"participant_id"`

	Answers  map[string]interface{} `bson:"answers" json:"answers"`
	Metadata map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`

	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for responses
func (RawResponse) CollectionName() string {
	return "responses"
}

// BeforeCreate sets default values before inserting a new response
func (r *RawResponse) BeforeCreate() {
	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = now
	}
	r.UpdatedAt = now
	if r.Answers == nil {
		r.Answers = map[string]interface{}{}
	}
}

// AnswerFor looks up a question's raw answer value, checking the top-level
// answers map first and then one level of section nesting.
func (r *RawResponse) AnswerFor(questionID string) (interface{}, bool) {
	if v, ok := r.Answers[questionID]; ok && v != nil {
		return v, true
	}
	for _, v := range r.Answers {
		nested, ok := asMap(v)
		if !ok {
			continue
		}
		if inner, ok := nested[questionID]; ok && inner != nil {
			return inner, true
		}
	}
	return nil, false
}

// AnsweredLeafCount counts non-empty answer leaves, recursing one level
// into section-nested answer objects. Used for completion-rate math.
func (r *RawResponse) AnsweredLeafCount() int {
	count := 0
	for _, v := range r.Answers {
		if nested, ok := asMap(v); ok {
			for _, inner := range nested {
				if !isEmptyAnswer(inner) {
					count++
				}
			}
			continue
		}
		if !isEmptyAnswer(v) {
			count++
		}
	}
	return count
}

// FieldByPath resolves a dot-path filter key against the response. Known
// top-level fields are matched by their wire names; everything else is a
// metadata lookup (e.g. "metadata.cohort" or bare "cohort").
func (r *RawResponse) FieldByPath(path string) (interface{}, bool) {
	switch path {
	case "participant_id", "participantId":
		return r.ParticipantID, true
	case "questionnaire_id", "questionnaireId":
		return r.QuestionnaireID.Hex(), true
	}

	parts := strings.Split(path, ".")
	if parts[0] == "metadata" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return nil, false
	}

	var current interface{} = r.Metadata
	for _, part := range parts {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asMap normalizes the map shapes the Mongo driver and encoding/json
// produce for nested documents.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case primitive.M:
		return m, true
	case primitive.D:
		out := make(map[string]interface{}, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

// isEmptyAnswer reports whether a leaf carries no usable answer
func isEmptyAnswer(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []interface{}:
		return len(val) == 0
	case primitive.A:
		return len(val) == 0
	}
	return false
}
