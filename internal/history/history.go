// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package history keeps the audit trail of administrative actions such as
// locking an account.
package history

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/sitegraph/internal/platform/database/schema"
	"github.com/taibuivan/sitegraph/internal/platform/dberr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/platform/validate"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

// History is one audit line attributed to the user who acted.
type History struct {
	ID          string    `bson:"_id" json:"_id"`
	UserID      string    `bson:"userId" json:"userId"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Repository defines the persistence contract for audit lines.
type Repository interface {
	Create(context context.Context, entry *History) error
	List(context context.Context, window pagination.Window) ([]*History, error)
}

// # Storage

// MongoRepository implements [Repository] on the "histories" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a history store on database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(schema.Histories.Collection)}
}

func (repository *MongoRepository) Create(context context.Context, entry *History) error {
	if _, err := repository.collection.InsertOne(context, entry); err != nil {
		return dberr.Wrap(err, "History")
	}
	return nil
}

// List returns audit lines newest first.
func (repository *MongoRepository) List(context context.Context, window pagination.Window) ([]*History, error) {
	cursor, err := repository.collection.Find(context, bson.M{}, mongodb.PageOptions(window))
	if err != nil {
		return nil, dberr.Wrap(err, "History")
	}

	entries := make([]*History, 0)
	if err := cursor.All(context, &entries); err != nil {
		return nil, dberr.Wrap(err, "History")
	}
	return entries, nil
}

// # Service

// Service appends and lists audit lines.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends description attributed to userID.
func (service *Service) Record(context context.Context, userID, description string) error {
	description = strings.TrimSpace(description)

	validator := &validate.Validator{}
	if err := validator.Required("userId", userID).Required("description", description).Err(); err != nil {
		return err
	}

	return service.repository.Create(context, &History{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		CreatedAt:   service.now(),
	})
}

func (service *Service) List(context context.Context, window pagination.Window) ([]*History, error) {
	return service.repository.List(context, window)
}
