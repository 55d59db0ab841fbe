// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

// SessionBuilder builds the per-request identity from transport headers.
//
// # Why an interface?
//
// Defining SessionBuilder here decouples the middleware from the token
// verification and user lookup, allowing mocks during unit testing.
type SessionBuilder interface {
	FromHTTP(request *http.Request) *authz.Session
}

// PermissionGuard is the subset of [authz.Guard] used by REST routes.
type PermissionGuard interface {
	RequirePermission(context context.Context, code string) error
}

// Authenticate attaches an [authz.Session] to every request.
//
// # Flow
//  1. Read the 'token' and 'currentsite' headers.
//  2. If the token is absent, the request proceeds as anonymous.
//  3. If the token is invalid, the request still proceeds; the session
//     remembers the failure and the directive layer reports it per field.
//  4. Inject the session (and the caller identity for logging) into the context.
func Authenticate(builder SessionBuilder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			session := builder.FromHTTP(request)

			ctx := authz.WithSession(request.Context(), session)
			identity := ctxutil.Identity{UserID: session.UserID(), SiteID: session.CurrentSite}
			ctx = ctxutil.WithIdentity(ctx, identity)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(identity.Attrs()...))

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequirePermission blocks REST requests whose session lacks code.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It applies the same
// rules (and error codes) as the hasPermission directive.
func RequirePermission(guard PermissionGuard, code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if err := guard.RequirePermission(request.Context(), code); err != nil {
				respond.Error(writer, request, err)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
