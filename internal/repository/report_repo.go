package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MongoReportTemplateRepository implements ReportTemplateRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoReportTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoReportTemplateRepository creates a new MongoDB report template repository
func NewMongoReportTemplateRepository(db *mongo.Database) *MongoReportTemplateRepository {
	return &MongoReportTemplateRepository{
		collection: db.Collection(models.ReportTemplate{}.CollectionName()),
	}
}

// Create creates a new report template
func (r *MongoReportTemplateRepository) Create(ctx context.Context, t *models.ReportTemplate) error {
	t.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, t)
	return err
}

// GetByID finds a report template by ID
func (r *MongoReportTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ReportTemplate, error) {
	var t models.ReportTemplate
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrReportTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForOrganization lists templates visible to an organization: its own
// plus approach-level templates without an owner
func (r *MongoReportTemplateRepository) ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.ReportTemplate, error) {
	filter := bson.M{"$or": []bson.M{
		{"organization_id": orgID},
		{"organization_id": nil},
	}}
	findOpts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []models.ReportTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Ensure MongoReportTemplateRepository implements ReportTemplateRepository
var _ ReportTemplateRepository = (*MongoReportTemplateRepository)(nil)

// MongoReportRepository implements ReportRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoReportRepository struct {
	collection *mongo.Collection
}

// NewMongoReportRepository creates a new MongoDB report repository
func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{
		collection: db.Collection(models.Report{}.CollectionName()),
	}
}

// GetByID finds a report by ID
func (r *MongoReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByKey finds the report for (organization, template, questionnaire)
func (r *MongoReportRepository) GetByKey(ctx context.Context, orgID, templateID, questionnaireID primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	filter := reportKeyFilter(orgID, templateID, questionnaireID)
	err := r.collection.FindOne(ctx, filter).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Upsert writes the report record for its key, overwriting any previous
// record in place. The unique index on the key makes concurrent writers
// converge on a single record (last write wins).
func (r *MongoReportRepository) Upsert(ctx context.Context, report *models.Report) error {
	if report.ID.IsZero() {
		report.BeforeCreate()
	} else {
		report.BeforeUpdate()
	}
	filter := reportKeyFilter(report.OrganizationID, report.TemplateID, report.QuestionnaireID)
	update := bson.M{"$set": report}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Update updates an existing report record
func (r *MongoReportRepository) Update(ctx context.Context, report *models.Report) error {
	report.BeforeUpdate()
	filter := bson.M{"_id": report.ID}
	update := bson.M{"$set": report}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrReportNotFound
	}
	return nil
}

// ListByQuestionnaire lists all reports for a questionnaire
func (r *MongoReportRepository) ListByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.Report, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	findOpts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func reportKeyFilter(orgID, templateID, questionnaireID primitive.ObjectID) bson.M {
	return bson.M{
		"organization_id":  orgID,
		"template_id":      templateID,
		"questionnaire_id": questionnaireID,
	}
}

// Ensure MongoReportRepository implements ReportRepository
var _ ReportRepository = (*MongoReportRepository)(nil)
