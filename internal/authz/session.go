// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz decides who is calling and what they may do.

# Architecture

  - Session: The identity of one GraphQL operation (user, tenant, token state).
    Transports build it once and attach it to the context every resolver sees.
  - SessionBuilder: Builds sessions from HTTP headers or WebSocket connection
    parameters.
  - Guard: The rules behind the isAuthenticated and hasPermission directives.
    REST routes reuse the same Guard so error codes never drift.
*/
package authz

import (
	"context"
	"sync"

	"github.com/taibuivan/sitegraph/internal/platform/ctxkey"
	"github.com/taibuivan/sitegraph/internal/users/account"
)

// Session is the caller identity of one operation.
//
// A zero Session is anonymous. CurrentSite is the tenant selected by the
// "currentsite" header or connection parameter and may be empty.
type Session struct {
	CurrentUser *account.User
	CurrentSite string
	Token       string

	// TokenErr is set when a token was sent but rejected. The request still
	// runs; guarded fields report the failure.
	TokenErr error

	mu     sync.Mutex
	loaded bool
	codes  map[string]struct{}
}

// Authenticated reports whether a user is attached.
func (session *Session) Authenticated() bool {
	return session != nil && session.CurrentUser != nil
}

// UserID returns the current user's ID or "".
func (session *Session) UserID() string {
	if !session.Authenticated() {
		return ""
	}
	return session.CurrentUser.ID
}

// permissionCodes returns the memoized code set, loading it on first use.
func (session *Session) permissionCodes(load func() (map[string]struct{}, error)) (map[string]struct{}, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.loaded {
		return session.codes, nil
	}

	codes, err := load()
	if err != nil {
		return nil, err
	}
	session.codes, session.loaded = codes, true
	return codes, nil
}

// WithSession attaches session to ctx.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ctxkey.Session, session)
}

// SessionFrom returns the session of ctx, or an anonymous one.
func SessionFrom(ctx context.Context) *Session {
	if session, ok := ctx.Value(ctxkey.Session).(*Session); ok && session != nil {
		return session
	}
	return &Session{}
}
