package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MongoVersionRepository implements VersionRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoVersionRepository struct {
	versions     *mongo.Collection
	translations *mongo.Collection
}

// NewMongoVersionRepository creates a new MongoDB version repository
func NewMongoVersionRepository(db *mongo.Database) *MongoVersionRepository {
	return &MongoVersionRepository{
		versions:     db.Collection(models.QuestionnaireVersion{}.CollectionName()),
		translations: db.Collection(models.Translation{}.CollectionName()),
	}
}

// CreateVersion inserts an immutable version snapshot
func (r *MongoVersionRepository) CreateVersion(ctx context.Context, v *models.QuestionnaireVersion) error {
	v.BeforeCreate()
	_, err := r.versions.InsertOne(ctx, v)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrVersionAlreadyExists
	}
	return err
}

// GetVersion finds a version by ID
func (r *MongoVersionRepository) GetVersion(ctx context.Context, id primitive.ObjectID) (*models.QuestionnaireVersion, error) {
	var v models.QuestionnaireVersion
	filter := bson.M{"_id": id}
	err := r.versions.FindOne(ctx, filter).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetCurrentVersion finds the highest-numbered version of a questionnaire
func (r *MongoVersionRepository) GetCurrentVersion(ctx context.Context, questionnaireID primitive.ObjectID) (*models.QuestionnaireVersion, error) {
	var v models.QuestionnaireVersion
	filter := bson.M{"questionnaire_id": questionnaireID}
	findOpts := options.FindOne().SetSort(bson.D{{Key: "version_number", Value: -1}})
	err := r.versions.FindOne(ctx, filter, findOpts).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVersions lists a questionnaire's versions, newest first
func (r *MongoVersionRepository) ListVersions(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.QuestionnaireVersion, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	findOpts := options.Find().SetSort(bson.D{{Key: "version_number", Value: -1}})

	cursor, err := r.versions.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var versions []models.QuestionnaireVersion
	if err := cursor.All(ctx, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// CreateTranslation inserts a translation for a version
func (r *MongoVersionRepository) CreateTranslation(ctx context.Context, t *models.Translation) error {
	t.BeforeCreate()
	_, err := r.translations.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrTranslationAlreadyExists
	}
	return err
}

// ListTranslations lists all translations of a version
func (r *MongoVersionRepository) ListTranslations(ctx context.Context, versionID primitive.ObjectID) ([]*models.Translation, error) {
	filter := bson.M{"version_id": versionID}
	findOpts := options.Find().SetSort(bson.D{{Key: "language", Value: 1}})

	cursor, err := r.translations.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var translations []*models.Translation
	if err := cursor.All(ctx, &translations); err != nil {
		return nil, err
	}
	return translations, nil
}

// Ensure MongoVersionRepository implements VersionRepository
var _ VersionRepository = (*MongoVersionRepository)(nil)
