// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/pkg/pagination"
	"github.com/taibuivan/sitegraph/pkg/pointer"
)

// # Argument Readers
//
// graphql-go has already coerced arguments to the declared types, so the
// readers only deal with absent values.

func stringArg(args map[string]interface{}, name string) string {
	value, _ := args[name].(string)
	return value
}

// optionalString distinguishes an absent argument (nil) from an empty one.
func optionalString(args map[string]interface{}, name string) *string {
	if value, ok := args[name].(string); ok {
		return pointer.To(value)
	}
	return nil
}

func optionalInt(args map[string]interface{}, name string) *int {
	if value, ok := args[name].(int); ok {
		return pointer.To(value)
	}
	return nil
}

func objectArg(args map[string]interface{}, name string) map[string]interface{} {
	value, _ := args[name].(map[string]interface{})
	return value
}

func stringList(value interface{}) []string {
	items, _ := value.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

// window reads the offset/limit pair of list fields.
func window(params graphql.ResolveParams) pagination.Window {
	return pagination.New(optionalInt(params.Args, "offset"), optionalInt(params.Args, "limit"))
}

func optionalGender(args map[string]interface{}) *account.Gender {
	if gender, ok := args["gender"].(account.Gender); ok {
		return pointer.To(gender)
	}
	return nil
}

func siteAccessList(value interface{}) []account.SiteAccess {
	items, _ := value.([]interface{})
	out := make([]account.SiteAccess, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, account.SiteAccess{
			SiteID:      stringArg(entry, "siteId"),
			Permissions: stringList(entry["permissions"]),
		})
	}
	return out
}

// pageArgs are the arguments of every list field.
var pageArgs = graphql.FieldConfigArgument{
	"offset": &graphql.ArgumentConfig{Type: graphql.Int},
	"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
}

var idArgs = graphql.FieldConfigArgument{
	"_id": &graphql.ArgumentConfig{Type: nonNullString},
}
