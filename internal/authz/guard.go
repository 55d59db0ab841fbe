// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
)

// Directive names, also used as metric labels.
const (
	DirectiveIsAuthenticated = "isAuthenticated"
	DirectiveHasPermission   = "hasPermission"
)

// PermissionSource returns the codes a user holds. An empty siteID means
// every site of the user.
type PermissionSource interface {
	CodesFor(context context.Context, userID, siteID string) (map[string]struct{}, error)
}

// DenialObserver records rejected checks.
type DenialObserver interface {
	ObserveDenial(directive string, code int)
}

// GuardOptions tunes the checks.
type GuardOptions struct {
	// RequireSite makes isAuthenticated also demand a currentsite.
	RequireSite bool
	// Memoize loads the permission set once per session instead of once per
	// guarded field. The membership check still runs per field.
	Memoize bool
}

// Guard implements the authorization directives.
type Guard struct {
	permissions PermissionSource
	options     GuardOptions
	observer    DenialObserver
}

// NewGuard constructs a new [Guard]. observer may be nil.
func NewGuard(permissions PermissionSource, options GuardOptions, observer DenialObserver) *Guard {
	return &Guard{permissions: permissions, options: options, observer: observer}
}

/*
RequireAuthenticated is the isAuthenticated rule.

Returns:
  - error: Unauthenticated (499) when the user, or the site when required, is missing
*/
func (guard *Guard) RequireAuthenticated(context context.Context) error {
	session := SessionFrom(context)

	if !session.Authenticated() {
		return guard.deny(context, DirectiveIsAuthenticated, guard.unauthenticated())
	}
	if guard.options.RequireSite && session.CurrentSite == "" {
		return guard.deny(context, DirectiveIsAuthenticated, guard.unauthenticated())
	}
	return nil
}

/*
RequirePermission is the hasPermission rule.

Description: The caller's grants for the current site (or all sites when no
site is selected) are flattened into a set of codes and code must be in it.

Parameters:
  - context: context.Context
  - code: string (e.g. USER_READ)

Returns:
  - error: InvalidToken (498) without a user, Unauthorized (401) without the code
*/
func (guard *Guard) RequirePermission(context context.Context, code string) error {
	session := SessionFrom(context)

	if !session.Authenticated() {
		return guard.deny(context, DirectiveHasPermission, apperr.InvalidToken("Invalid Token"))
	}

	load := func() (map[string]struct{}, error) {
		return guard.permissions.CodesFor(context, session.CurrentUser.ID, session.CurrentSite)
	}

	var codes map[string]struct{}
	var err error
	if guard.options.Memoize {
		codes, err = session.permissionCodes(load)
	} else {
		codes, err = load()
	}
	if err != nil {
		return apperr.Normalize(err)
	}

	if _, ok := codes[code]; !ok {
		return guard.deny(context, DirectiveHasPermission, apperr.Unauthorized("Unauthorized"))
	}
	return nil
}

func (guard *Guard) unauthenticated() *apperr.AppError {
	if guard.options.RequireSite {
		return apperr.Unauthenticated("currentUser & currentsite Required")
	}
	return apperr.Unauthenticated("currentUser Required")
}

func (guard *Guard) deny(context context.Context, directive string, appError *apperr.AppError) error {
	if guard.observer != nil {
		guard.observer.ObserveDenial(directive, appError.WireCode)
	}
	ctxutil.GetLogger(context).Debug("authz_denied",
		slog.String("directive", directive),
		slog.Int("code", appError.WireCode),
	)
	return appError
}
