package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireVersion is an immutable snapshot of a questionnaire at
// publish time. Once written it never mutates; edits happen on the draft
// row and require a new publish.
type QuestionnaireVersion struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`

	// Monotonic per questionnaire, starts at 1
	VersionNumber int `bson:"version_number" json:"version_number"`

	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Schema      QuestionnaireSchema `bson:"schema" json:"schema"`

	// Language the version was authored in; its content lives on this
	// document, all other languages are Translation rows
	MasterLanguage string `bson:"master_language" json:"master_language"`

	PublishedAt time.Time `bson:"published_at" json:"published_at"`
}

// CollectionName returns the MongoDB collection name for versions
func (QuestionnaireVersion) CollectionName() string {
	return "questionnaire_versions"
}

// BeforeCreate assigns an ObjectID for new versions
func (v *QuestionnaireVersion) BeforeCreate() {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if v.PublishedAt.IsZero() {
		v.PublishedAt = time.Now().UTC()
	}
}

// Translation carries a version's content in one non-master language.
// At most one translation exists per (version, language); the master
// language has no translation row.
type Translation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VersionID primitive.ObjectID `bson:"version_id" json:"version_id"`
	Language  string             `bson:"language" json:"language"`

	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Schema      QuestionnaireSchema `bson:"schema" json:"schema"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection name for translations
func (Translation) CollectionName() string {
	return "translations"
}

// BeforeCreate assigns an ObjectID and timestamp for new translations
func (t *Translation) BeforeCreate() {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}
