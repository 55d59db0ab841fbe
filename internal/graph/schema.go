// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package graph is the GraphQL surface of sitegraph.

# Architecture

  - Schema: Built once at startup with graphql-go. Every field resolver is
    composed with [Chain], so the directives of a field are declared next to it.
  - Directives: isAuthenticated and hasPermission are [Interceptor]s backed by
    an [authz.Guard]. They run per field, before the resolver.
  - Transport: [Handler] serves HTTP (GET, POST, persisted queries, GraphiQL)
    and upgrades WebSocket requests on the same path for subscriptions.

Resolvers read the caller from the context with [authz.SessionFrom]. The
session is attached by the HTTP middleware or by the WebSocket handshake.
*/
package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
)

// schemaBuilder carries the dependencies the resolvers close over.
type schemaBuilder struct {
	deps  Dependencies
	types types
}

// NewSchema builds the executable schema.
func NewSchema(deps Dependencies) (graphql.Schema, error) {
	builder := &schemaBuilder{deps: deps}
	builder.buildTypes()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:        builder.queryType(),
		Mutation:     builder.mutationType(),
		Subscription: builder.subscriptionType(),
		Types:        []graphql.Type{builder.types.result},
		Directives: append(
			append([]*graphql.Directive{}, graphql.SpecifiedDirectives...),
			isAuthenticatedDirective,
			hasPermissionDirective,
		),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("graph: build schema: %w", err)
	}
	return schema, nil
}

// authenticated and permitted shorten the directive declarations below.
func (builder *schemaBuilder) authenticated() Interceptor {
	return IsAuthenticated(builder.deps.Guard)
}

func (builder *schemaBuilder) permitted(code string) Interceptor {
	return HasPermission(builder.deps.Guard, code)
}
