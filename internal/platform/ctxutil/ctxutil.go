// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sitegraph/internal/platform/ctxkey"
)

// value returns the T stored under key, or the zero T.
func value[T any](ctx context.Context, key ctxkey.Key) T {
	stored, _ := ctx.Value(key).(T)
	return stored
}

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.RequestID, id)
}

// GetRequestID retrieves the request ID from the context, or "".
func GetRequestID(ctx context.Context) string {
	return value[string](ctx, ctxkey.RequestID)
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.Logger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger := value[*slog.Logger](ctx, ctxkey.Logger); logger != nil {
		return logger
	}
	return slog.Default()
}

// # Identity

// Identity is the caller as the logs see it. Authorization never reads it;
// that is the job of authz.Session.
type Identity struct {
	UserID string
	SiteID string
}

// Attrs returns the non-empty fields as slog attributes.
func (identity Identity) Attrs() []any {
	attrs := make([]any, 0, 2)
	if identity.UserID != "" {
		attrs = append(attrs, slog.String("user_id", identity.UserID))
	}
	if identity.SiteID != "" {
		attrs = append(attrs, slog.String("site_id", identity.SiteID))
	}
	return attrs
}

// WithIdentity records who is calling, for log correlation. A slot reserved
// by [TrackIdentity] further up the chain is filled too.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if slot := value[*Identity](ctx, ctxkey.IdentitySlot); slot != nil {
		*slot = identity
	}
	return context.WithValue(ctx, ctxkey.Identity, identity)
}

// TrackIdentity reserves a slot that a later [WithIdentity] fills. Middleware
// that wraps the session layer reads the slot after the handler returns.
func TrackIdentity(ctx context.Context) (context.Context, *Identity) {
	slot := &Identity{}
	return context.WithValue(ctx, ctxkey.IdentitySlot, slot), slot
}

// GetIdentity returns the recorded caller. Anonymous requests get the zero value.
func GetIdentity(ctx context.Context) Identity {
	return value[Identity](ctx, ctxkey.Identity)
}
