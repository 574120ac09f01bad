package models

import (
	"testing"
)

func newTestQuestionnaire() *Questionnaire {
	q := &Questionnaire{
		Title:          "Team Pulse",
		MasterLanguage: "en",
		Schema: QuestionnaireSchema{
			Sections: []Section{{
				ID:        "s1",
				Questions: []Question{{ID: "q1", Type: QuestionTypeScale}},
			}},
		},
	}
	q.BeforeCreate()
	return q
}

func TestQuestionnaire_BeforeCreate(t *testing.T) {
	q := &Questionnaire{Title: "Pulse"}
	q.BeforeCreate()

	if q.ID.IsZero() {
		t.Error("BeforeCreate() left zero ID")
	}
	if !q.IsDraft() {
		t.Errorf("Status = %v, want draft", q.Status)
	}
	if q.CurrentVersion != 0 {
		t.Errorf("CurrentVersion = %d, want 0", q.CurrentVersion)
	}
	if q.MasterLanguage != "en" {
		t.Errorf("MasterLanguage = %q, want en default", q.MasterLanguage)
	}
}

func TestQuestionnaire_Publish(t *testing.T) {
	q := newTestQuestionnaire()

	version, err := q.Publish()
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if version.VersionNumber != 1 {
		t.Errorf("VersionNumber = %d, want 1", version.VersionNumber)
	}
	if version.QuestionnaireID != q.ID {
		t.Errorf("QuestionnaireID = %v, want %v", version.QuestionnaireID, q.ID)
	}
	if version.ID.IsZero() {
		t.Error("version ID not assigned")
	}
	if version.MasterLanguage != "en" {
		t.Errorf("MasterLanguage = %q, want en", version.MasterLanguage)
	}
	if !q.IsPublished() {
		t.Errorf("Status = %v, want published", q.Status)
	}
	if q.PublishedAt == nil {
		t.Error("PublishedAt not set")
	}

	// Republishing advances the counter
	second, err := q.Publish()
	if err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}
	if second.VersionNumber != 2 || q.CurrentVersion != 2 {
		t.Errorf("second version = %d (current %d), want 2", second.VersionNumber, q.CurrentVersion)
	}
}

func TestQuestionnaire_PublishArchived(t *testing.T) {
	q := newTestQuestionnaire()
	if _, err := q.Publish(); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := q.Archive(); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if _, err := q.Publish(); err != ErrInvalidStatusTransition {
		t.Errorf("Publish() on archived = %v, want %v", err, ErrInvalidStatusTransition)
	}
}

func TestQuestionnaire_Archive(t *testing.T) {
	q := newTestQuestionnaire()

	// Drafts cannot be archived
	if err := q.Archive(); err != ErrInvalidStatusTransition {
		t.Errorf("Archive() on draft = %v, want %v", err, ErrInvalidStatusTransition)
	}

	if _, err := q.Publish(); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := q.Archive(); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !q.IsArchived() {
		t.Errorf("Status = %v, want archived", q.Status)
	}
}
