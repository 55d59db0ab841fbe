// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, header names, collection names and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Transport: Header and connection-parameter names carrying identity.
  - Storage: Document-store collection names.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "sitegraph"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is zero so long-lived WebSocket connections are not cut;
	// HTTP requests are bounded by the timeout middleware instead.
	DefaultWriteTimeout = 0

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds the initial connectivity checks.
	StartupTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitBurst is the maximum burst allowed for the in-process limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Transport Identity

const (
	// HeaderToken carries the bearer credential on HTTP requests.
	HeaderToken = "token"

	// HeaderCurrentSite selects the tenant on HTTP requests.
	HeaderCurrentSite = "currentsite"

	// ParamToken and ParamCurrentSite are the WebSocket connection parameters.
	ParamToken       = "token"
	ParamCurrentSite = "currentsite"

	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "sitegraph"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Collections

const (
	CollectionUsers          = "users"
	CollectionUserPermission = "userPermission"
	CollectionPermission     = "permission"
	CollectionSites          = "sites"
	CollectionEmails         = "emails"
	CollectionFiles          = "file"
	CollectionHistories      = "histories"
)

// # Redis Prefixes

const (
	RedisPrefixPubSub    = "sitegraph:pubsub:"
	RedisPrefixRateLimit = "sitegraph:ratelimit"
)
