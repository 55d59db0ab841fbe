// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

const resource = "Site"

var searchFields = mongodb.FieldsOf(schema.Sites.Searchable()...)

// MongoRepository implements [Repository] on the "sites" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a site store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Sites.Collection)}
}

func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*Site, error) {
	return repository.find(context, bson.M{}, mongodb.PageOptions(window))
}

// Search applies a client criteria limited to the searchable site fields.
func (repository *MongoRepository) Search(context context.Context, criteria mongodb.Criteria) ([]*Site, error) {
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

func (repository *MongoRepository) find(context context.Context, filter bson.M, opts *options.FindOptions) ([]*Site, error) {
	cursor, err := repository.collection.Find(context, filter, opts)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}

	sites := make([]*Site, 0)
	if err := cursor.All(context, &sites); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return sites, nil
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*Site, error) {
	return repository.findOne(context, bson.M{schema.Sites.ID: id})
}

func (repository *MongoRepository) FindBySlug(context context.Context, slug string) (*Site, error) {
	return repository.findOne(context, bson.M{schema.Sites.Slug: slug})
}

func (repository *MongoRepository) findOne(context context.Context, filter bson.M) (*Site, error) {
	site := &Site{}
	if err := repository.collection.FindOne(context, filter).Decode(site); err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return site, nil
}

func (repository *MongoRepository) Create(context context.Context, site *Site) error {
	if _, err := repository.collection.InsertOne(context, site); err != nil {
		return dberr.Wrap(err, resource)
	}
	return nil
}

func (repository *MongoRepository) Update(context context.Context, site *Site) error {
	result, err := repository.collection.ReplaceOne(context, bson.M{schema.Sites.ID: site.ID}, site)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func (repository *MongoRepository) Delete(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.M{schema.Sites.ID: id})
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
