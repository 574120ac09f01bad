package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexManager handles MongoDB index creation and management
// #INDEX_IMPLEMENTATION: All indexes defined per data architecture plan
type IndexManager struct {
	db *mongo.Database
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *mongo.Database) *IndexManager {
	return &IndexManager{db: db}
}

// CreateAllIndexes creates all indexes for all collections
// #MIGRATION_DECISION: Indexes created at application startup if they don't exist
func (m *IndexManager) CreateAllIndexes(ctx context.Context) error {
	creators := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"organizations", m.createOrganizationIndexes},
		{"questionnaires", m.createQuestionnaireIndexes},
		{"versions", m.createVersionIndexes},
		{"translations", m.createTranslationIndexes},
		{"responses", m.createResponseIndexes},
		{"report_templates", m.createReportTemplateIndexes},
		{"reports", m.createReportIndexes},
	}

	for _, c := range creators {
		if err := c.fn(ctx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", c.name, err)
		}
	}
	return nil
}

// createOrganizationIndexes creates indexes for the organizations collection
// #INDEX_IMPLEMENTATION: Slug unique
func (m *IndexManager) createOrganizationIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionOrganizations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// createQuestionnaireIndexes creates indexes for the questionnaires collection
// #INDEX_IMPLEMENTATION: Organization's questionnaires by status
func (m *IndexManager) createQuestionnaireIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionQuestionnaires).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	return err
}

// createVersionIndexes creates indexes for the questionnaire_versions collection
// #INDEX_IMPLEMENTATION: Unique monotonic version number per questionnaire
func (m *IndexManager) createVersionIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionVersions).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "questionnaire_id", Value: 1},
				{Key: "version_number", Value: -1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// createTranslationIndexes creates indexes for the translations collection
// #INDEX_IMPLEMENTATION: At most one translation per (version, language)
func (m *IndexManager) createTranslationIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionTranslations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "version_id", Value: 1},
				{Key: "language", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// createResponseIndexes creates indexes for the responses collection
// #INDEX_IMPLEMENTATION: Aggregation reads all of a questionnaire's responses
func (m *IndexManager) createResponseIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionResponses).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "questionnaire_id", Value: 1},
				{Key: "submitted_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "questionnaire_id", Value: 1},
				{Key: "participant_id", Value: 1},
			},
		},
	})
	return err
}

// createReportTemplateIndexes creates indexes for the report_templates collection
// #INDEX_IMPLEMENTATION: Owned templates by organization; shared ones have no owner
func (m *IndexManager) createReportTemplateIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionReportTemplates).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
	})
	return err
}

// createReportIndexes creates indexes for the organization_reports collection
// #INDEX_IMPLEMENTATION: Unique report per (organization, template, questionnaire);
// the upsert in the report repository relies on this key
func (m *IndexManager) createReportIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionReports).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "template_id", Value: 1},
				{Key: "questionnaire_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "questionnaire_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
	})
	return err
}
