// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

const resource = "File"

// Repository defines the persistence contract for file metadata.
type Repository interface {
	Create(context context.Context, file *File) error
	FindByID(context context.Context, id string) (*File, error)
	List(context context.Context, window pagination.Window) ([]*File, error)
	Delete(context context.Context, id string) error
}

// MongoRepository implements [Repository] on the "file" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a file metadata store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Files.Collection)}
}

func (repository *MongoRepository) Create(context context.Context, file *File) error {
	if _, err := repository.collection.InsertOne(context, file); err != nil {
		return dberr.Wrap(err, resource)
	}
	return nil
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*File, error) {
	file := &File{}
	if err := repository.collection.FindOne(context, bson.M{schema.Files.ID: id}).Decode(file); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return file, nil
}

func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*File, error) {
	cursor, err := repository.collection.Find(context, bson.M{}, mongodb.PageOptions(window))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	files := make([]*File, 0)
	if err := cursor.All(context, &files); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return files, nil
}

func (repository *MongoRepository) Delete(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.M{schema.Files.ID: id})
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
