// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/sitegraph/internal/access/grant"
	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/api"
	"github.com/taibuivan/sitegraph/internal/authz"
	"github.com/taibuivan/sitegraph/internal/file"
	"github.com/taibuivan/sitegraph/internal/graph"
	"github.com/taibuivan/sitegraph/internal/history"
	"github.com/taibuivan/sitegraph/internal/mailing"
	"github.com/taibuivan/sitegraph/internal/platform/config"
	"github.com/taibuivan/sitegraph/internal/platform/constants"
	"github.com/taibuivan/sitegraph/internal/platform/metrics"
	"github.com/taibuivan/sitegraph/internal/platform/middleware"
	"github.com/taibuivan/sitegraph/internal/platform/migration"
	"github.com/taibuivan/sitegraph/internal/platform/mongodb"
	redisstore "github.com/taibuivan/sitegraph/internal/platform/redis"
	"github.com/taibuivan/sitegraph/internal/platform/scheduler"
	"github.com/taibuivan/sitegraph/internal/platform/sec"
	"github.com/taibuivan/sitegraph/internal/pubsub"
	"github.com/taibuivan/sitegraph/internal/site"
	"github.com/taibuivan/sitegraph/internal/users/account"
	"github.com/taibuivan/sitegraph/internal/users/auth"
)

func serveCommand() *cobra.Command {
	var skipMigrations bool

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, log := bootstrap()
			return serve(cfg, log, !skipMigrations)
		},
	}
	command.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return command
}

/*
serve wires every dependency and blocks until a shutdown signal arrives.

# Startup Sequence

 1. Connect to MongoDB (lazy, reachability logged in the background).
 2. Connect to Redis when configured.
 3. Run migrations (idempotent).
 4. Wire services, the authorization guard and the GraphQL schema.
 5. Start the scheduler and the HTTP server with graceful shutdown.
*/
func serve(cfg *config.Config, log *slog.Logger, runMigrations bool) error {
	// Root context for startup. Use a deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// Lives as long as the process; cancelling it stops background loops.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 1. MongoDB ────────────────────────────────────────────────────────
	mongoClient, database, err := mongodb.Connect(rootCtx, cfg.MongoURL, cfg.MongoDatabase, log)
	must(log, err, "connect to mongodb")
	defer func() {
		log.Info("closing mongo client")
		if cerr := mongodb.Disconnect(mongoClient, constants.ShutdownTimeout); cerr != nil {
			log.Error("mongo disconnect error", slog.Any("error", cerr))
		}
	}()

	// ── 2. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 3. Migrations ─────────────────────────────────────────────────────
	// An unreachable database is logged like the startup ping, not fatal.
	if runMigrations {
		databaseURL, err := cfg.MigrationURL()
		must(log, err, "build migration url")
		if err := migration.RunUp(databaseURL, cfg.MigrationPath, log); err != nil {
			log.Error("startup_migration_failed", slog.Any("error", err))
		}
	}

	// ── 4. Platform ───────────────────────────────────────────────────────
	registry := metrics.New()

	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	var bus pubsub.Bus = pubsub.NewMemoryBus(log)
	if cfg.PubSubBackend == "redis" {
		bus = pubsub.NewRedisBus(rdb, constants.RedisPrefixPubSub, log)
	}
	bus = pubsub.Instrumented(bus, registry)

	var limiter middleware.Limiter = middleware.NewMemoryLimiter(rootCtx, cfg.RateLimit, cfg.RateLimitWindow)
	if rdb != nil {
		limiter = middleware.NewRedisLimiter(rdb, constants.RedisPrefixRateLimit, cfg.RateLimit, cfg.RateLimitWindow)
	}

	var mailer mailing.Mailer = mailing.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		mailer = mailing.NewSMTPMailer(mailing.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	var storage file.Storage
	if cfg.S3Bucket != "" {
		storage, err = file.NewS3Storage(startupCtx, file.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		must(log, err, "initialize s3 storage")
	} else {
		storage, err = file.NewLocalStorage(cfg.StaticDir, "/static")
		must(log, err, "initialize local storage")
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	siteService := site.NewService(site.NewMongoRepository(database))
	permissionService := permission.NewService(permission.NewMongoRepository(database))
	grantService := grant.NewService(grant.NewMongoRepository(database), siteService)
	historyService := history.NewService(history.NewMongoRepository(database))
	mailService := mailing.NewService(mailing.NewMongoRepository(database), mailer, mailing.Options{
		PublicURL:    cfg.PublicURL(),
		TrackingPath: cfg.GraphQLPath(),
	}, log)
	fileService := file.NewService(file.NewMongoRepository(database), storage)

	userService := account.NewService(
		account.NewMongoRepository(database),
		grantService,
		historyService,
		mailService,
		tokens,
		account.Options{TokenTTL: cfg.TokenTTL, ResetTokenTTL: cfg.ResetTokenTTL},
	)

	// ── 6. Authorization ──────────────────────────────────────────────────
	sessions := authz.NewSessionBuilder(auth.NewAuthenticator(tokens, userService))
	guard := authz.NewGuard(grantService, authz.GuardOptions{
		RequireSite: cfg.AuthzRequireSite,
		Memoize:     cfg.AuthzMemoize,
	}, registry)

	// ── 7. GraphQL ────────────────────────────────────────────────────────
	schema, err := graph.NewSchema(graph.Dependencies{
		Users:       userService,
		Grants:      grantService,
		Permissions: permissionService,
		Sites:       siteService,
		Emails:      mailService,
		Files:       fileService,
		Histories:   historyService,
		Bus:         bus,
		Guard:       guard,
	})
	must(log, err, "build graphql schema")

	graphHandler := graph.NewHandler(schema, sessions, graph.HandlerOptions{
		Playground:     cfg.PlaygroundEnabled(),
		Persisted:      graph.NewPersistedQueries(cfg.APQCacheSize, cfg.APQCacheTTL),
		MaxQueryLength: cfg.QueryMaxLength,
		CheckOrigin:    originChecker(cfg),
		Observer:       registry,
	})

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	health := api.HealthDependencies{
		CheckDatabase: func(context context.Context) error {
			return mongodb.Ping(context, mongoClient)
		},
	}
	if rdb != nil {
		health.CheckCache = func(context context.Context) error {
			return redisstore.Ping(context, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 9. Scheduler ──────────────────────────────────────────────────────
	jobs := scheduler.New(log)
	must(log, scheduler.RegisterDefaults(jobs, userService, userService), "register scheduled jobs")
	jobs.Start()
	defer jobs.Stop()

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Security{
		Sessions: sessions,
		Guard:    guard,
		Limiter:  limiter,
		Observer: registry,
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		GraphQL:   graphHandler,
		Mailing:   mailing.NewHandler(mailService),
		Files:     file.NewHandler(fileService),
		Metrics:   registry.Handler(),
	})

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case runErr = <-serverErr:
		log.Error("server startup error", slog.Any("error", runErr))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	closed := graphHandler.CloseSockets()
	log.Info("websockets_closed", slog.Int("count", closed))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		return err
	}

	log.Info("server stopped cleanly")
	return runErr
}

// originChecker accepts every WebSocket origin in development and only the
// CORS allow-list elsewhere. Non-browser clients send no Origin and pass.
func originChecker(cfg *config.Config) func(request *http.Request) bool {
	if cfg.IsDevelopment() {
		return nil
	}
	allowed := cfg.AllowedOrigins()
	return func(request *http.Request) bool {
		origin := request.Header.Get(constants.HeaderOrigin)
		return origin == "" || slices.Contains(allowed, origin)
	}
}
