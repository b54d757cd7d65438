// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

/*
Package config handles service settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into
strongly-typed Go structs, providing early validation and default values.

Usage:

	cfg, err := config.LoadAuth()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to components (codec, clients, servers) via constructors.
  - Zero Hidden State: No global variables are used to store config — there are
    no ad hoc environment reads anywhere outside this package.

Each deployable service (gateway, auth, identity) has its own config struct;
signing secrets, token TTLs, and upstream addresses are never hard-coded.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Shared Runtime Settings

// Runtime holds the environment flags common to every service.
type Runtime struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`
}

// IsDevelopment reports whether the service is running in development mode.
func (r *Runtime) IsDevelopment() bool {
	return r.Environment == "development"
}

// IsProduction reports whether the service is running in production mode.
// Production implies HTTPS: session cookies switch to Secure/SameSite=None.
func (r *Runtime) IsProduction() bool {
	return r.Environment == "production"
}

// # Gateway Service

// Gateway holds runtime configuration for the edge gateway.
type Gateway struct {
	Runtime

	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// Upstream service base URLs, keyed by path prefix in the router.
	AuthServiceURL     string `env:"AUTH_SERVICE_URL,required"`
	IdentityServiceURL string `env:"IDENTITY_SERVICE_URL,required"`

	// ProxyTimeout bounds a single proxied round trip to any upstream.
	ProxyTimeout time.Duration `env:"PROXY_TIMEOUT" envDefault:"30s"`
}

// # Auth Service

// Auth holds runtime configuration for the authentication service.
type Auth struct {
	Runtime

	ServerPort string `env:"SERVER_PORT" envDefault:"8081"`

	// Signing secrets. Access and refresh use distinct secrets so possession
	// of one never implies possession of the other's verification key.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`

	// Token lifetimes.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`

	// Identity service lookup target and per-lookup deadline.
	IdentityServiceURL string        `env:"IDENTITY_SERVICE_URL,required"`
	IdentityTimeout    time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`

	// Key-Value store for login attempt throttling.
	RedisURL string `env:"REDIS_URL,required"`
}

// # Identity Service

// Identity holds runtime configuration for the identity/user service.
type Identity struct {
	Runtime

	ServerPort string `env:"SERVER_PORT" envDefault:"8082"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// The identity service verifies access tokens on its own protected
	// routes, so it shares the signing configuration with the auth service.
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`
}

// # Configuration Loading

// LoadGateway parses environment variables into a [Gateway] config.
func LoadGateway() (*Gateway, error) {
	cfg := &Gateway{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// LoadAuth parses environment variables into an [Auth] config.
func LoadAuth() (*Auth, error) {
	cfg := &Auth{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// LoadIdentity parses environment variables into an [Identity] config.
func LoadIdentity() (*Identity, error) {
	cfg := &Identity{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}
