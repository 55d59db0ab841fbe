// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailing

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

const resource = "Email"

// Repository defines the persistence contract for mail records.
type Repository interface {
	Create(context context.Context, email *Email) error

	// MarkOpened sets isOpened on the record. An unknown id is apperr.NotFound.
	MarkOpened(context context.Context, id string, at time.Time) error
	List(context context.Context, window pagination.Window) ([]*Email, error)
}

// MongoRepository implements [Repository] on the "emails" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a mail record store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Emails.Collection)}
}

func (repository *MongoRepository) Create(context context.Context, email *Email) error {
	if _, err := repository.collection.InsertOne(context, email); err != nil {
		return dberr.Wrap(err, resource)
	}
	return nil
}

func (repository *MongoRepository) MarkOpened(context context.Context, id string, at time.Time) error {
	result, err := repository.collection.UpdateOne(context,
		bson.M{schema.Emails.ID: id},
		bson.M{"$set": bson.M{schema.Emails.IsOpened: true, schema.Emails.UpdatedAt: at}},
	)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*Email, error) {
	cursor, err := repository.collection.Find(context, bson.M{}, mongodb.PageOptions(window))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	emails := make([]*Email, 0)
	if err := cursor.All(context, &emails); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return emails, nil
}
