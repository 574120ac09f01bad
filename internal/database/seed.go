package database

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// Seeder seeds shared reference data
// #IMPLEMENTATION_DECISION: Shared report templates ship with the service and
// are seeded at startup; organizations layer their own templates on top
type Seeder struct {
	db *mongo.Database
}

// NewSeeder creates a new seeder
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{db: db}
}

// SeedAll seeds all shared reference data
func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.SeedReportTemplates(ctx); err != nil {
		return fmt.Errorf("failed to seed report templates: %w", err)
	}
	return nil
}

// SeedReportTemplates inserts the shared report templates, skipping any
// that already exist by name
func (s *Seeder) SeedReportTemplates(ctx context.Context) error {
	coll := s.db.Collection(CollectionReportTemplates)

	for _, template := range sharedReportTemplates() {
		filter := bson.M{
			"name":            template.Name,
			"organization_id": bson.M{"$exists": false},
		}
		count, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		template.BeforeCreate()
		if _, err := coll.InsertOne(ctx, template); err != nil {
			return err
		}
		log.Printf("seeded report template %q", template.Name)
	}
	return nil
}

// sharedReportTemplates returns the templates every organization can use.
// Dimension keys double as chart identifiers in the visualization config.
func sharedReportTemplates() []*models.ReportTemplate {
	return []*models.ReportTemplate{
		{
			Name:        "Engagement Overview",
			Description: "Average engagement and satisfaction across all scale questions",
			Config: models.ReportTemplateConfig{
				DataMappings: map[string]models.DataMapping{
					"engagement": {
						QuestionIDs:     []string{"q_engagement_1", "q_engagement_2"},
						AggregationType: models.AggregationAverage,
						Scale:           &models.ScaleRange{Min: 1, Max: 5},
					},
					"satisfaction": {
						QuestionIDs:     []string{"q_satisfaction"},
						AggregationType: models.AggregationAverage,
						Scale:           &models.ScaleRange{Min: 1, Max: 5},
					},
				},
				Visualization: &models.VisualizationConfig{
					DefaultChartType: "bar",
					Charts: map[string]string{
						"engagement": "radar",
					},
				},
			},
		},
		{
			Name:        "Response Distribution",
			Description: "Answer distributions for every mapped question",
			Config: models.ReportTemplateConfig{
				DataMappings: map[string]models.DataMapping{
					"answers": {
						QuestionIDs:     []string{"q_engagement_1"},
						AggregationType: models.AggregationDistribution,
					},
				},
				Visualization: &models.VisualizationConfig{
					DefaultChartType: "pie",
				},
				PDF: &models.PDFConfig{
					Title:         "Response Distribution",
					PageSize:      "A4",
					IncludeCharts: true,
				},
			},
		},
	}
}

// ClearSeededData removes the shared templates, used by test environments
func (s *Seeder) ClearSeededData(ctx context.Context) error {
	names := make([]string, 0)
	for _, t := range sharedReportTemplates() {
		names = append(names, t.Name)
	}

	_, err := s.db.Collection(CollectionReportTemplates).DeleteMany(ctx, bson.M{
		"name":            bson.M{"$in": names},
		"organization_id": bson.M{"$exists": false},
	})
	return err
}
