// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package grant

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

const resource = "UserPermission"

var fields = schema.UserPermission

// MongoRepository implements [Repository] on the "userPermission" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a grant store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(fields.Collection)}
}

/*
Upsert runs FindOneAndUpdate with upsert=true keyed on (userId, siteId).

Description: _id and createdAt are only written on insert. When two upserts
race on a fresh key the server may report a duplicate key for the loser; the
write is retried once as a plain update, which then matches the winner.

Parameters:
  - context: context.Context
  - userID, siteID: string (the unique key)
  - siteName: string
  - permissions: []PermissionInfo (already deduplicated)
  - now: time.Time

Returns:
  - *UserPermission: The stored document
  - error: Storage failures
*/
func (repository *MongoRepository) Upsert(context context.Context, userID, siteID, siteName string, permissions []PermissionInfo, now time.Time) (*UserPermission, error) {
	filter := bson.M{fields.UserID: userID, fields.SiteID: siteID}
	update := bson.M{
		"$set": bson.M{
			fields.SiteName:    siteName,
			fields.Permissions: permissions,
			fields.UpdatedAt:   now,
		},
		"$setOnInsert": bson.M{
			fields.ID:        uuid.New(),
			fields.CreatedAt: now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	grant := &UserPermission{}
	err := repository.collection.FindOneAndUpdate(context, filter, update, opts).Decode(grant)
	if mongo.IsDuplicateKeyError(err) {
		err = repository.collection.FindOneAndUpdate(context, filter, update, opts).Decode(grant)
	}
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return grant, nil
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*UserPermission, error) {
	return repository.findOne(context, bson.M{fields.ID: id})
}

func (repository *MongoRepository) FindByUserAndSite(context context.Context, userID, siteID string) (*UserPermission, error) {
	return repository.findOne(context, bson.M{fields.UserID: userID, fields.SiteID: siteID})
}

func (repository *MongoRepository) findOne(context context.Context, filter bson.M) (*UserPermission, error) {
	grant := &UserPermission{}
	if err := repository.collection.FindOne(context, filter).Decode(grant); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return grant, nil
}

func (repository *MongoRepository) ListByUser(context context.Context, userID string) ([]*UserPermission, error) {
	opts := options.Find().SetSort(bson.D{{Key: fields.CreatedAt, Value: 1}})
	return repository.find(context, bson.M{fields.UserID: userID}, opts)
}

func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*UserPermission, error) {
	return repository.find(context, bson.M{}, mongodb.PageOptions(window))
}

func (repository *MongoRepository) find(context context.Context, filter bson.M, opts *options.FindOptions) ([]*UserPermission, error) {
	cursor, err := repository.collection.Find(context, filter, opts)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	grants := make([]*UserPermission, 0)
	if err := cursor.All(context, &grants); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return grants, nil
}

func (repository *MongoRepository) Update(context context.Context, grant *UserPermission) error {
	result, err := repository.collection.ReplaceOne(context, bson.M{fields.ID: grant.ID}, grant)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) Delete(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.M{fields.ID: id})
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) DeleteByUser(context context.Context, userID string) (int64, error) {
	result, err := repository.collection.DeleteMany(context, bson.M{fields.UserID: userID})
	if err != nil {
		return 0, dberr.Wrap(err, resource)
	}
	return result.DeletedCount, nil
}

func (repository *MongoRepository) DeleteAll(context context.Context) (int64, error) {
	result, err := repository.collection.DeleteMany(context, bson.M{})
	if err != nil {
		return 0, dberr.Wrap(err, resource)
	}
	return result.DeletedCount, nil
}
