// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

const resource = "User"

// searchFields lists the user fields clients may search and sort on.
var searchFields = mongodb.FieldsOf(schema.Users.Searchable()...)

// # Repository Implementation

// MongoRepository implements [Repository] on the "users" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a user store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Users.Collection)}
}

/*
FindByID retrieves a user document by _id.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated identity entity
  - error: apperr.NotFound or driver failure
*/
func (repository *MongoRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, bson.M{schema.Users.ID: id})
}

func (repository *MongoRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, bson.M{schema.Users.Email: email})
}

func (repository *MongoRepository) FindByResetToken(context context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.NotFound(resource)
	}
	return repository.findOne(context, bson.M{schema.Users.ResetPasswordToken: token})
}

func (repository *MongoRepository) findOne(context context.Context, filter bson.M) (*User, error) {
	user := &User{}
	if err := repository.collection.FindOne(context, filter).Decode(user); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return user, nil
}

// List returns one newest-first page of users.
func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*User, error) {
	return repository.find(context, bson.M{}, mongodb.PageOptions(window))
}

// Search applies a client criteria limited to [searchFields].
func (repository *MongoRepository) Search(context context.Context, criteria mongodb.Criteria) ([]*User, error) {
	filter, err := criteria.Filter(searchFields)
	if err != nil {
		return nil, err
	}
	opts, err := criteria.FindOptions(searchFields)
	if err != nil {
		return nil, err
	}
	return repository.find(context, filter, opts)
}

func (repository *MongoRepository) find(context context.Context, filter bson.M, opts *options.FindOptions) ([]*User, error) {
	cursor, err := repository.collection.Find(context, filter, opts)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	users := make([]*User, 0)
	if err := cursor.All(context, &users); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return users, nil
}

func (repository *MongoRepository) Count(context context.Context) (int64, error) {
	total, err := repository.collection.CountDocuments(context, bson.M{})
	if err != nil {
		return 0, dberr.Wrap(err, resource)
	}
	return total, nil
}

/*
Create inserts a new user document.

Description: The unique index on "email" is the final duplicate guard; a
concurrent sign-up with the same email surfaces as apperr.Conflict.
*/
func (repository *MongoRepository) Create(context context.Context, user *User) error {
	if _, err := repository.collection.InsertOne(context, user); err != nil {
		return dberr.Wrap(err, resource)
	}
	return nil
}

// Update replaces the whole document. The caller owns UpdatedAt.
func (repository *MongoRepository) Update(context context.Context, user *User) error {
	result, err := repository.collection.ReplaceOne(context, bson.M{schema.Users.ID: user.ID}, user)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) SoftDelete(context context.Context, id string) error {
	result, err := repository.collection.UpdateOne(context,
		bson.M{schema.Users.ID: id},
		bson.M{"$set": bson.M{schema.Users.IsActive: false, schema.Users.UpdatedAt: time.Now().UTC()}},
	)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) Delete(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.M{schema.Users.ID: id})
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) DeleteAll(context context.Context) (int64, error) {
	result, err := repository.collection.DeleteMany(context, bson.M{})
	if err != nil {
		return 0, dberr.Wrap(err, resource)
	}
	return result.DeletedCount, nil
}

func (repository *MongoRepository) ClearExpiredResetTokens(context context.Context, now time.Time) (int64, error) {
	result, err := repository.collection.UpdateMany(context,
		bson.M{schema.Users.ResetPasswordExpires: bson.M{"$lt": now}},
		bson.M{"$unset": bson.M{schema.Users.ResetPasswordToken: "", schema.Users.ResetPasswordExpires: ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("mongo_user_repo_clear_reset_tokens_failed: %w", err)
	}
	return result.ModifiedCount, nil
}
