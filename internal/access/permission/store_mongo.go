// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

const resource = "Permission"

// MongoRepository implements [Repository] on the "permission" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a permission store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Permission.Collection)}
}

// List returns permissions ordered by code.
func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*Permission, error) {
	window = window.Clamp()
	opts := options.Find().
		SetSort(bson.D{{Key: schema.Permission.Code, Value: 1}}).
		SetSkip(int64(window.Offset)).
		SetLimit(int64(window.Limit))

	cursor, err := repository.collection.Find(context, bson.M{}, opts)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	permissions := make([]*Permission, 0)
	if err := cursor.All(context, &permissions); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return permissions, nil
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*Permission, error) {
	return repository.findOne(context, bson.M{schema.Permission.ID: id})
}

func (repository *MongoRepository) FindByCode(context context.Context, code string) (*Permission, error) {
	return repository.findOne(context, bson.M{schema.Permission.Code: code})
}

func (repository *MongoRepository) findOne(context context.Context, filter bson.M) (*Permission, error) {
	permission := &Permission{}
	if err := repository.collection.FindOne(context, filter).Decode(permission); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return permission, nil
}

func (repository *MongoRepository) Create(context context.Context, permission *Permission) error {
	if _, err := repository.collection.InsertOne(context, permission); err != nil {
		return dberr.Wrap(err, resource)
	}
	return nil
}

func (repository *MongoRepository) Update(context context.Context, permission *Permission) error {
	result, err := repository.collection.ReplaceOne(context, bson.M{schema.Permission.ID: permission.ID}, permission)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) Delete(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.M{schema.Permission.ID: id})
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
