// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Mongo, Redis, GraphQL) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the sitegraph API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"         envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	Domain      string `env:"DOMAIN"       envDefault:"localhost"`

	// EndPoint is the GraphQL path (HTTP and WebSocket), without leading slash.
	EndPoint string `env:"END_POINT" envDefault:"graphql"`

	// Document store (MongoDB)
	MongoURL      string `env:"MONGO_URL,required"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"sitegraph"`

	// MigrationPath is the filesystem path to the migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis). Optional: enables the redis event bus and the
	// distributed rate limiter.
	RedisURL      string `env:"REDIS_URL"`
	PubSubBackend string `env:"PUBSUB_BACKEND" envDefault:"memory"`

	// Rate limiting per client IP
	RateLimit       int           `env:"RATE_LIMIT"        envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// StaticDir holds static assets and locally stored uploads.
	StaticDir string `env:"STATIC_DIR" envDefault:"./static"`

	// Token signing
	JWTSecret     string        `env:"JWT_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"       envDefault:"24h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// GraphQL request guards
	QueryMaxLength int           `env:"QUERY_MAX_LENGTH" envDefault:"2000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"30s"`
	APQCacheSize   int           `env:"APQ_CACHE_SIZE"   envDefault:"1000"`
	APQCacheTTL    time.Duration `env:"APQ_CACHE_TTL"    envDefault:"24h"`
	Playground     *bool         `env:"PLAYGROUND"`

	// Authorization behaviour
	AuthzRequireSite bool `env:"AUTHZ_REQUIRE_SITE" envDefault:"true"`
	AuthzMemoize     bool `env:"AUTHZ_MEMOIZE"      envDefault:"true"`

	// Outgoing mail. An empty host selects the log-only mailer.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@sitegraph.local"`

	// Object Storage (S3-compatible). An empty bucket selects local disk.
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.EndPoint = strings.Trim(cfg.EndPoint, "/")
	if cfg.IsTesting() {
		cfg.EndPoint = "graphqllunch"
	}

	if cfg.PubSubBackend != "memory" && cfg.PubSubBackend != "redis" {
		return nil, fmt.Errorf("config: PUBSUB_BACKEND must be memory or redis, got %q", cfg.PubSubBackend)
	}
	if cfg.PubSubBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: PUBSUB_BACKEND=redis requires REDIS_URL")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsTesting reports whether the server is running under the e2e test profile.
func (c *Config) IsTesting() bool {
	return c.Environment == "testing"
}

// PlaygroundEnabled reports whether GraphiQL is served on plain GET requests.
func (c *Config) PlaygroundEnabled() bool {
	if c.Playground != nil {
		return *c.Playground
	}
	return !c.IsProduction()
}

// GraphQLPath returns the mount path of the GraphQL endpoint.
func (c *Config) GraphQLPath() string {
	return "/" + c.EndPoint
}

// PublicURL returns the externally reachable base URL used in mail links.
func (c *Config) PublicURL() string {
	return fmt.Sprintf("http://%s:%s", c.Domain, c.ServerPort)
}

// MigrationURL returns MongoURL with its path pointing at MongoDatabase,
// which is the form golang-migrate's mongodb driver expects.
func (c *Config) MigrationURL() (string, error) {
	parsed, err := url.Parse(c.MongoURL)
	if err != nil {
		return "", fmt.Errorf("config: invalid MONGO_URL: %w", err)
	}
	parsed.Path = "/" + c.MongoDatabase
	return parsed.String(), nil
}

// AllowedOrigins returns the CORS allow-list used outside development.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://" + c.Domain, "https://" + c.Domain}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
