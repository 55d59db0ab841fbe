// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines the context keys shared by middleware, the GraphQL
// transports and resolvers.
//
// # Safety
//
// Keys are struct values with an unexported field, so no other package can
// build a key that collides with these.
package ctxkey

// Key identifies one request-scoped value.
type Key struct {
	name string
}

func (key Key) String() string {
	return "sitegraph/" + key.name
}

var (
	// RequestID carries the X-Request-ID correlation value.
	RequestID = Key{name: "request_id"}

	// Identity carries the caller's user and site IDs for log correlation.
	Identity = Key{name: "identity"}

	// IdentitySlot carries a *Identity reserved by the access logger.
	IdentitySlot = Key{name: "identity_slot"}

	// Session carries the per-operation authz.Session.
	Session = Key{name: "session"}

	// Logger carries the per-request [*log/slog.Logger].
	Logger = Key{name: "logger"}
)
