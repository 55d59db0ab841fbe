// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

Redis is optional in sitegraph. When REDIS_URL is set it carries two concerns:

  - Fan-out: PUBLISH/SUBSCRIBE delivers subscription events to every instance.
  - Throttling: fixed-window counters back the distributed rate limiter.

Without it the process falls back to the in-memory bus and limiter.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second

	// commandTimeout bounds PUBLISH and the limiter's INCR/PEXPIRE pipeline.
	// Subscriber connections block on reads and are not affected.
	commandTimeout = 2 * time.Second

	// clientName shows up in CLIENT LIST next to every connection.
	clientName = "sitegraph"
)

// NewClient parses a Redis URL and returns a client whose connectivity has
// been checked.
//
// # Pool sizing
//
// Every open GraphQL subscription on the redis bus holds one dedicated
// connection outside the pool. The pool itself only serves publishes and the
// rate limiter, so it stays small.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = clientName
	options.PoolSize = 10
	options.MinIdleConns = 1
	options.DialTimeout = dialTimeout
	options.ReadTimeout = commandTimeout
	options.WriteTimeout = commandTimeout
	options.ContextTimeoutEnabled = true

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis client connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping backs the /ready probe and the startup check.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
