package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MongoResponseRepository implements ResponseRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoResponseRepository struct {
	collection *mongo.Collection
}

// NewMongoResponseRepository creates a new MongoDB response repository
func NewMongoResponseRepository(db *mongo.Database) *MongoResponseRepository {
	return &MongoResponseRepository{
		collection: db.Collection(models.RawResponse{}.CollectionName()),
	}
}

// Create inserts a new response
func (r *MongoResponseRepository) Create(ctx context.Context, response *models.RawResponse) error {
	response.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, response)
	return err
}

// ListByQuestionnaire lists all responses for a questionnaire in
// submission order. The aggregation pipeline treats the full set as loaded
// in memory.
func (r *MongoResponseRepository) ListByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) ([]*models.RawResponse, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	findOpts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*models.RawResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// CountByQuestionnaire counts responses for a questionnaire
func (r *MongoResponseRepository) CountByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) (int64, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	return r.collection.CountDocuments(ctx, filter)
}

// Ensure MongoResponseRepository implements ResponseRepository
var _ ResponseRepository = (*MongoResponseRepository)(nil)
