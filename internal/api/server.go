// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
transport handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - The GraphQL endpoint serves GET, POST and WebSocket upgrades on one path.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/sitegraph/internal/access/permission"
	"github.com/taibuivan/sitegraph/internal/file"
	"github.com/taibuivan/sitegraph/internal/mailing"
	"github.com/taibuivan/sitegraph/internal/platform/config"
	"github.com/taibuivan/sitegraph/internal/platform/constants"
	"github.com/taibuivan/sitegraph/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the transport handlers mounted by the router.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 only when every dependency answers.
	Readiness http.HandlerFunc

	// GraphQL serves queries, mutations and subscriptions.
	GraphQL http.Handler

	// Mailing serves the open-tracking pixel under the GraphQL path.
	Mailing *mailing.Handler

	// Files accepts multipart uploads.
	Files *file.Handler

	// Metrics is the Prometheus scrape endpoint. Optional.
	Metrics http.Handler
}

// Security carries the request-scoped guards shared by every route.
type Security struct {
	Sessions middleware.SessionBuilder
	Guard    middleware.PermissionGuard
	Limiter  middleware.Limiter
	Observer middleware.HTTPObserver
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, security Security, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	if security.Observer != nil {
		r.Use(middleware.Instrument(security.Observer))
	}
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(cfg))
	if security.Limiter != nil {
		r.Use(middleware.RateLimit(security.Limiter))
	}
	r.Use(middleware.SkipWebSocket(chimw.Compress(5)))
	r.Use(middleware.SkipWebSocket(chimw.Timeout(cfg.RequestTimeout)))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Authenticate(security.Sessions))

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	r.Route(cfg.GraphQLPath(), func(graph chi.Router) {
		graph.With(middleware.QuerySizeLimit(cfg.QueryMaxLength)).Handle("/", h.GraphQL)
		h.Mailing.RegisterRoutes(graph)
	})

	r.Route("/files", func(files chi.Router) {
		files.Use(middleware.RequirePermission(security.Guard, permission.CodeFileUpload))
		h.Files.RegisterRoutes(files)
	})

	// Local uploads are served back from the static directory.
	static := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
	r.Method(http.MethodGet, "/static/*", static)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
//
// Hijacked WebSocket connections are not tracked by [http.Server.Shutdown];
// the caller closes them first through the GraphQL handler.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
