// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
)

// # Directive Chain

// Interceptor wraps a field resolver. It may reject the call, or run code
// around the next resolver.
type Interceptor func(next graphql.FieldResolveFn) graphql.FieldResolveFn

// Guard is the subset of [authz.Guard] the directives need.
type Guard interface {
	RequireAuthenticated(context context.Context) error
	RequirePermission(context context.Context, code string) error
}

/*
Chain composes resolve with interceptors.

Description: The first interceptor runs first. The chain is built once, when
the schema is built, so a field's directives are visible right where the field
is declared:

	Chain(listUsers, HasPermission(guard, permission.CodeUserRead))

Every chained resolver also passes its error through normalizeError.
*/
func Chain(resolve graphql.FieldResolveFn, interceptors ...Interceptor) graphql.FieldResolveFn {
	for index := len(interceptors) - 1; index >= 0; index-- {
		resolve = interceptors[index](resolve)
	}
	return normalized(resolve)
}

// IsAuthenticated rejects the field unless a user (and, when configured, a
// site) is attached to the session. The wrapped resolver is not invoked.
func IsAuthenticated(guard Guard) Interceptor {
	return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
		return func(params graphql.ResolveParams) (interface{}, error) {
			if err := guard.RequireAuthenticated(params.Context); err != nil {
				return nil, err
			}
			return next(params)
		}
	}
}

// HasPermission rejects the field unless the caller holds code on the current
// site. The check runs on every invocation of the field.
func HasPermission(guard Guard, code string) Interceptor {
	return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
		return func(params graphql.ResolveParams) (interface{}, error) {
			if err := guard.RequirePermission(params.Context, code); err != nil {
				return nil, err
			}
			return next(params)
		}
	}
}

// normalized makes sure clients only ever see AppErrors.
func normalized(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(params graphql.ResolveParams) (interface{}, error) {
		result, err := resolve(params)
		if err != nil {
			return nil, normalizeError(params.Context, params.Info.FieldName, err)
		}
		return result, nil
	}
}

// normalizeError returns AppErrors unchanged and wraps anything else as
// Internal (500). The cause is logged, never returned.
func normalizeError(context context.Context, field string, err error) error {
	appError := apperr.Normalize(err)
	if appError.WireCode >= apperr.CodeInternal {
		ctxutil.GetLogger(context).Error("graphql_resolver_failed",
			slog.String("field", field),
			slog.Any("cause", appError.Cause),
		)
	}
	return appError
}

// # Schema Declarations

// Directive declarations, so introspection shows which fields are guarded.
var (
	isAuthenticatedDirective = graphql.NewDirective(graphql.DirectiveConfig{
		Name:        authz.DirectiveIsAuthenticated,
		Description: "Requires a signed-in user and a selected site.",
		Locations:   []string{graphql.DirectiveLocationFieldDefinition},
	})

	hasPermissionDirective = graphql.NewDirective(graphql.DirectiveConfig{
		Name:        authz.DirectiveHasPermission,
		Description: "Requires the permission code on the current site.",
		Locations:   []string{graphql.DirectiveLocationFieldDefinition},
		Args: graphql.FieldConfigArgument{
			"permission": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
)
