package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireStatus represents the status of a questionnaire
// #IMPLEMENTATION_DECISION: DRAFT -> PUBLISHED -> ARCHIVED lifecycle
type QuestionnaireStatus string

const (
	QuestionnaireStatusDraft     QuestionnaireStatus = "DRAFT"
	QuestionnaireStatusPublished QuestionnaireStatus = "PUBLISHED"
	QuestionnaireStatusArchived  QuestionnaireStatus = "ARCHIVED"
)

// MarshalJSON converts QuestionnaireStatus to lowercase for JSON serialization
func (qs QuestionnaireStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qs)))
}

// UnmarshalJSON converts lowercase JSON to QuestionnaireStatus
func (qs *QuestionnaireStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qs = QuestionnaireStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionnaireStatus is a valid value
func (qs QuestionnaireStatus) IsValid() bool {
	switch qs {
	case QuestionnaireStatusDraft, QuestionnaireStatusPublished, QuestionnaireStatusArchived:
		return true
	}
	return false
}

// Questionnaire represents the live, editable questionnaire row. Its schema
// is the draft; published content lives in immutable QuestionnaireVersion
// snapshots. Edits never touch a published version.
// #DATA_ASSUMPTION: Published versions are immutable (publish again to change)
// #CARDINALITY_ASSUMPTION: Approach 1:N Questionnaires - an approach template can spawn many instances
type Questionnaire struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	ApproachID     *primitive.ObjectID `bson:"approach_id,omitempty" json:"approach_id,omitempty"`

	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      QuestionnaireStatus `bson:"status" json:"status"`

	// Language the draft is authored in; translations are keyed off it
	MasterLanguage string `bson:"master_language" json:"master_language"`

	// Draft schema (mutable until the next publish)
	Schema QuestionnaireSchema `bson:"schema" json:"schema"`

	// Highest published version number, 0 while never published
	CurrentVersion int `bson:"current_version" json:"current_version"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for questionnaires
func (Questionnaire) CollectionName() string {
	return "questionnaires"
}

// BeforeCreate sets default values before inserting a new questionnaire
func (q *Questionnaire) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	q.Status = QuestionnaireStatusDraft
	q.CurrentVersion = 0
	if q.MasterLanguage == "" {
		q.MasterLanguage = "en"
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (q *Questionnaire) BeforeUpdate() {
	q.UpdatedAt = time.Now().UTC()
}

// IsDraft returns true if the questionnaire has never been published
func (q *Questionnaire) IsDraft() bool {
	return q.Status == QuestionnaireStatusDraft
}

// IsPublished returns true if the questionnaire is published
func (q *Questionnaire) IsPublished() bool {
	return q.Status == QuestionnaireStatusPublished
}

// IsArchived returns true if the questionnaire is archived
func (q *Questionnaire) IsArchived() bool {
	return q.Status == QuestionnaireStatusArchived
}

// Archive marks the questionnaire as archived
func (q *Questionnaire) Archive() error {
	if q.Status != QuestionnaireStatusPublished {
		return ErrInvalidStatusTransition
	}
	q.Status = QuestionnaireStatusArchived
	q.UpdatedAt = time.Now().UTC()
	return nil
}

// Publish snapshots the draft into an immutable version and advances the
// version counter. Version numbers are monotonic per questionnaire and
// start at 1.
func (q *Questionnaire) Publish() (*QuestionnaireVersion, error) {
	if q.Status == QuestionnaireStatusArchived {
		return nil, ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	q.CurrentVersion++
	q.Status = QuestionnaireStatusPublished
	q.PublishedAt = &now
	q.UpdatedAt = now

	version := &QuestionnaireVersion{
		QuestionnaireID: q.ID,
		VersionNumber:   q.CurrentVersion,
		Title:           q.Title,
		Description:     q.Description,
		Schema:          q.Schema,
		MasterLanguage:  q.MasterLanguage,
		PublishedAt:     now,
	}
	version.BeforeCreate()
	return version, nil
}
