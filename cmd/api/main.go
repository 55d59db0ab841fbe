// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the sitegraph GraphQL server.
//
// # Commands
//
//   - serve: run the HTTP and WebSocket server (default).
//   - migrate up: apply pending index and seed migrations.
//   - migrate down --steps N: roll back N migrations.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/sitegraph/internal/platform/config"
)

func main() {
	root := &cobra.Command{
		Use:           "sitegraph",
		Short:         "Multi-tenant GraphQL API for users, sites and permissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := serveCommand()
	root.AddCommand(serveCmd, migrateCommand())

	// A bare invocation serves, which keeps container entrypoints short.
	root.RunE = serveCmd.RunE

	if err := root.Execute(); err != nil {
		slog.Error("command_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap builds the logger and loads configuration, the two steps every
// command shares.
func bootstrap() (*config.Config, *slog.Logger) {
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("endpoint", cfg.GraphQLPath()),
		slog.String("pubsub", cfg.PubSubBackend),
	)
	return cfg, log
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "sitegraph"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
