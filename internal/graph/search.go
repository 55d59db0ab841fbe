// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/pointer"
	"github.com/taibuivan/sitegraph/pkg/slice"
)

// # Search Results

// ResultKind tags the variant held by a [SearchResult].
type ResultKind string

const (
	KindUser ResultKind = "User"
	KindSite ResultKind = "Site"
)

// SearchResult is one member of the Result union. Kind is set when the
// result is built and decides the GraphQL type.
type SearchResult struct {
	Kind ResultKind
	User *account.User
	Site *site.Site
}

// Value returns the entity selected by Kind.
func (result SearchResult) Value() interface{} {
	switch result.Kind {
	case KindUser:
		return result.User
	case KindSite:
		return result.Site
	}
	return nil
}

func userResult(user *account.User) SearchResult {
	return SearchResult{Kind: KindUser, User: user}
}

func siteResult(s *site.Site) SearchResult {
	return SearchResult{Kind: KindSite, Site: s}
}

// # Search Arguments

var searchTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SearchType",
	Values: graphql.EnumValueConfigMap{
		string(KindUser): &graphql.EnumValueConfig{Value: KindUser},
		string(KindSite): &graphql.EnumValueConfig{Value: KindSite},
	},
})

var searchInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:        "SearchInput",
	Description: "where is keyed by result type, e.g. {User: {email: \"a@b.c\"}}.",
	Fields: graphql.InputObjectConfigFieldMap{
		"where": &graphql.InputObjectFieldConfig{Type: JSON},
		"order": &graphql.InputObjectFieldConfig{Type: JSON},
		"skip":  &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"take":  &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

// criteriaFor reads the conditions argument for one result kind.
func criteriaFor(kind ResultKind, conditions map[string]interface{}) (mongodb.Criteria, error) {
	criteria := mongodb.Criteria{Page: pagination.New(intPointer(conditions["skip"]), intPointer(conditions["take"]))}

	if where, ok := conditions["where"].(map[string]interface{}); ok {
		switch scoped := where[string(kind)].(type) {
		case nil:
		case map[string]interface{}:
			criteria.Where = scoped
		default:
			return criteria, apperr.ValidationError("where." + string(kind) + " must be an object")
		}
	}

	if order, ok := conditions["order"].(map[string]interface{}); ok {
		criteria.Order = make(map[string]string, len(order))
		for field, direction := range order {
			text, ok := direction.(string)
			if !ok {
				return criteria, apperr.ValidationError("order values must be ASC or DESC",
					apperr.FieldError{Field: field, Message: "Expected ASC or DESC"})
			}
			criteria.Order[field] = text
		}
	}
	return criteria, nil
}

// intPointer returns nil for anything that is not an integer argument.
func intPointer(value interface{}) *int {
	switch number := value.(type) {
	case int:
		return pointer.To(number)
	case int64:
		return pointer.To(int(number))
	case float64:
		return pointer.To(int(number))
	}
	return nil
}

// resolveSearch runs a criteria search over users or sites.
func (builder *schemaBuilder) resolveSearch(params graphql.ResolveParams) (interface{}, error) {
	kind, _ := params.Args["type"].(ResultKind)
	conditions, _ := params.Args["conditions"].(map[string]interface{})

	criteria, err := criteriaFor(kind, conditions)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	switch kind {
	case KindUser:
		users, err := builder.deps.Users.Search(params.Context, criteria)
		if err != nil {
			return nil, err
		}
		results = slice.Map(users, userResult)
	case KindSite:
		sites, err := builder.deps.Sites.Search(params.Context, criteria)
		if err != nil {
			return nil, err
		}
		results = slice.Map(sites, siteResult)
	default:
		return nil, apperr.ValidationError("Unknown search type")
	}

	if len(results) == 0 {
		return nil, apperr.NotFound(string(kind))
	}
	return results, nil
}
