// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mongodb

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/pkg/pagination"
)

// # Search Criteria

// Criteria is a client-supplied search over one collection.
//
// Only equality matches are supported, and only on fields the store allows.
// Clients never reach operators such as $where or $regex.
type Criteria struct {
	// Where maps public field names to the value they must equal.
	Where map[string]interface{}
	// Order maps public field names to "ASC" or "DESC".
	Order map[string]string
	Page  pagination.Window
}

// Fields maps public (GraphQL) field names to document keys.
type Fields map[string]string

// FieldsOf exposes each document key under its own name.
func FieldsOf(keys ...string) Fields {
	fields := make(Fields, len(keys))
	for _, key := range keys {
		fields[key] = key
	}
	return fields
}

// Filter converts Where into a bson filter, rejecting unknown fields and
// non-scalar values.
func (criteria Criteria) Filter(allowed Fields) (bson.M, error) {
	filter := bson.M{}
	for field, value := range criteria.Where {
		key, ok := allowed[field]
		if !ok {
			return nil, apperr.ValidationError("Unsupported search field",
				apperr.FieldError{Field: field, Message: "Field cannot be searched"})
		}
		switch value.(type) {
		case string, bool, int, int32, int64, float64, nil:
			filter[key] = value
		default:
			return nil, apperr.ValidationError("Unsupported search value",
				apperr.FieldError{Field: field, Message: "Only scalar equality is supported"})
		}
	}
	return filter, nil
}

// FindOptions converts Order and Page into driver options.
//
// Results default to newest first.
func (criteria Criteria) FindOptions(allowed Fields) (*options.FindOptions, error) {
	sortSpec := bson.D{}

	// Stable order of sort keys regardless of map iteration.
	fields := make([]string, 0, len(criteria.Order))
	for field := range criteria.Order {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		key, ok := allowed[field]
		if !ok {
			return nil, apperr.ValidationError("Unsupported sort field",
				apperr.FieldError{Field: field, Message: "Field cannot be sorted"})
		}
		switch strings.ToUpper(criteria.Order[field]) {
		case "ASC":
			sortSpec = append(sortSpec, bson.E{Key: key, Value: 1})
		case "DESC":
			sortSpec = append(sortSpec, bson.E{Key: key, Value: -1})
		default:
			return nil, apperr.ValidationError("Unsupported sort direction",
				apperr.FieldError{Field: field, Message: fmt.Sprintf("Use ASC or DESC, got %q", criteria.Order[field])})
		}
	}
	if len(sortSpec) == 0 {
		sortSpec = bson.D{{Key: "createdAt", Value: -1}}
	}

	page := criteria.Page.Clamp()
	return options.Find().
		SetSort(sortSpec).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit)), nil
}

// PageOptions returns newest-first driver options for a plain listing.
func PageOptions(window pagination.Window) *options.FindOptions {
	page := window.Clamp()
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
}
