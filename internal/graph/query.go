// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/pkg/uuid"
)

func (builder *schemaBuilder) queryType() *graphql.Object {
	t := builder.types
	deps := builder.deps

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": {
				Type:        graphql.String,
				Description: "Returns a fresh identifier. Useful as a liveness probe.",
				Resolve: Chain(func(graphql.ResolveParams) (interface{}, error) {
					return uuid.New(), nil
				}),
			},

			// # Users

			"me": {
				Type: t.user,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return authz.SessionFrom(params.Context).CurrentUser, nil
				}, builder.authenticated()),
			},
			"users": {
				Type: graphql.NewList(t.user),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Users.List(params.Context, window(params))
				}, builder.permitted(permission.CodeUserRead)),
			},
			"user": {
				Type: t.user,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Users.FindByID(params.Context, stringArg(params.Args, "_id"))
				}, builder.permitted(permission.CodeUserRead)),
			},
			"search": {
				Type: graphql.NewList(t.result),
				Args: graphql.FieldConfigArgument{
					"type":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(searchTypeEnum)},
					"conditions": &graphql.ArgumentConfig{Type: searchInput},
				},
				Resolve: Chain(builder.resolveSearch, builder.permitted(permission.CodeUserRead)),
			},

			// # Permissions

			"permissions": {
				Type: graphql.NewList(t.permission),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Permissions.List(params.Context, window(params))
				}, builder.permitted(permission.CodePermissionRead)),
			},
			"permission": {
				Type: t.permission,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Permissions.FindByID(params.Context, stringArg(params.Args, "_id"))
				}, builder.permitted(permission.CodePermissionRead)),
			},
			"userPermissions": {
				Type: graphql.NewList(t.userPermission),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Grants.List(params.Context, window(params))
				}, builder.permitted(permission.CodePermissionRead)),
			},
			"userPermission": {
				Type: t.userPermission,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Grants.FindByID(params.Context, stringArg(params.Args, "_id"))
				}, builder.permitted(permission.CodePermissionRead)),
			},

			// # Sites

			"sites": {
				Type: graphql.NewList(t.site),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.List(params.Context, window(params))
				}, builder.authenticated()),
			},
			"site": {
				Type: t.site,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.FindByID(params.Context, stringArg(params.Args, "_id"))
				}, builder.authenticated()),
			},

			// # Records

			"emails": {
				Type: graphql.NewList(t.email),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Emails.List(params.Context, window(params))
				}, builder.permitted(permission.CodeEmailRead)),
			},
			"files": {
				Type: graphql.NewList(t.file),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Files.List(params.Context, window(params))
				}, builder.authenticated()),
			},
			"file": {
				Type: t.file,
				Args: idArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Files.FindByID(params.Context, stringArg(params.Args, "_id"))
				}, builder.authenticated()),
			},
			"histories": {
				Type: graphql.NewList(t.history),
				Args: pageArgs,
				Resolve: Chain(func(params graphql.ResolveParams) (interface{}, error) {
					return deps.Histories.List(params.Context, window(params))
				}, builder.permitted(permission.CodeHistoryRead)),
			},
		},
	})
}
