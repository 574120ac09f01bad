package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// MongoOrganizationRepository implements OrganizationRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoOrganizationRepository struct {
	collection *mongo.Collection
}

// NewMongoOrganizationRepository creates a new MongoDB organization repository
func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	return &MongoOrganizationRepository{
		collection: db.Collection(models.Organization{}.CollectionName()),
	}
}

// Create creates a new organization
func (r *MongoOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	org.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, org)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrSlugAlreadyExists
	}
	return err
}

// GetByID finds an organization by ID
func (r *MongoOrganizationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug finds an organization by slug
func (r *MongoOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	filter := bson.M{"slug": slug}
	err := r.collection.FindOne(ctx, filter).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *MongoOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	org.BeforeUpdate()
	filter := bson.M{"_id": org.ID}
	update := bson.M{"$set": org}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrOrganizationNotFound
	}
	return nil
}

// Ensure MongoOrganizationRepository implements OrganizationRepository
var _ OrganizationRepository = (*MongoOrganizationRepository)(nil)
