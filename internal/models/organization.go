// Package models defines all MongoDB document models for the PulseCheck survey platform
// #SCHEMA_IMPLEMENTATION: Using MongoDB with BSON ObjectID primary keys
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization represents a tenant that administers questionnaires.
// The reporting core only needs ownership and language defaults; member and
// role management lives in the account service.
// #CARDINALITY_ASSUMPTION: Organization 1:N Questionnaires
type Organization struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`

	// Default master language for newly authored questionnaires
	DefaultLanguage string `bson:"default_language" json:"default_language"`

	// User IDs allowed to manage this organization
	AdminUserIDs []string `bson:"admin_user_ids" json:"admin_user_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for organizations
func (Organization) CollectionName() string {
	return "organizations"
}

// BeforeCreate sets default values before inserting a new organization
func (o *Organization) BeforeCreate() {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = "en"
	}
	if o.AdminUserIDs == nil {
		o.AdminUserIDs = []string{}
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (o *Organization) BeforeUpdate() {
	o.UpdatedAt = time.Now().UTC()
}

// IsAdmin returns true if the given user may manage this organization
func (o *Organization) IsAdmin(userID string) bool {
	for _, id := range o.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
