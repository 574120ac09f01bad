package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MongoQuestionnaireRepository implements QuestionnaireRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionnaireRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionnaireRepository creates a new MongoDB questionnaire repository
func NewMongoQuestionnaireRepository(db *mongo.Database) *MongoQuestionnaireRepository {
	return &MongoQuestionnaireRepository{
		collection: db.Collection(models.Questionnaire{}.CollectionName()),
	}
}

// Create creates a new questionnaire draft
func (r *MongoQuestionnaireRepository) Create(ctx context.Context, q *models.Questionnaire) error {
	q.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, q)
	return err
}

// GetByID finds a questionnaire by ID
func (r *MongoQuestionnaireRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Questionnaire, error) {
	var q models.Questionnaire
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Update updates a questionnaire draft
func (r *MongoQuestionnaireRepository) Update(ctx context.Context, q *models.Questionnaire) error {
	q.BeforeUpdate()
	filter := bson.M{"_id": q.ID}
	update := bson.M{"$set": q}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}

// ListByOrganization lists an organization's questionnaires
func (r *MongoQuestionnaireRepository) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Questionnaire], error) {
	filter := bson.M{"organization_id": orgID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	skip := int64((opts.Page - 1) * opts.Limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(opts.Limit)).
		SetSort(bson.D{{Key: opts.SortBy, Value: opts.SortDir}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questionnaires []models.Questionnaire
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Questionnaire]{
		Items:      questionnaires,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Ensure MongoQuestionnaireRepository implements QuestionnaireRepository
var _ QuestionnaireRepository = (*MongoQuestionnaireRepository)(nil)
