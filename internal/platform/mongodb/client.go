// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mongodb provides a managed MongoDB client for the sitegraph application.
//
// # Architecture
//
// This package is part of the Infrastructure layer. It manages the physical
// connections (driver pool) and hands a [*mongo.Database] to the concrete
// stores that implement the interfaces defined in the domain packages.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Opinionated pool settings for the sitegraph workload.
const (
	// maxPoolSize is the maximum number of connections in the pool.
	maxPoolSize = 25
	// minPoolSize keeps a warm set of connections to avoid cold-start latency.
	minPoolSize = 2
	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute
	// connectTimeout is the maximum time allowed to establish a new connection.
	connectTimeout = 5 * time.Second
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

// Connect creates a client and returns the named database.
//
// The driver connects lazily, so Connect only fails on a malformed URI.
// Reachability is checked by a background ping whose result is logged.
//
// # Parameters
//   - context: Context for the client construction.
//   - uri: A mongodb:// or mongodb+srv:// connection string.
//   - database: The database name all collections live in.
//   - logger: Structured logger for connection events.
func Connect(context context.Context, uri, database string, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetMaxConnIdleTime(maxConnIdleTime).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(context, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: failed to create client: %w", err)
	}

	go func() {
		if err := Ping(context, client); err != nil {
			logger.Error("mongo_unreachable", slog.Any("error", err))
			return
		}
		logger.Info("mongo client connected", slog.String("database", database))
	}()

	return client, client.Database(database), nil
}

// Ping verifies that the primary is reachable.
func Ping(context context.Context, client *mongo.Client) error {
	pingCtx, cancel := contextWithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}

	return nil
}

// Disconnect closes the client, bounded by the given timeout.
func Disconnect(client *mongo.Client, timeout time.Duration) error {
	shutdownCtx, cancel := contextWithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Disconnect(shutdownCtx)
}

func contextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
