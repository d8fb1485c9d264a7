// Copyright (c) 2026 Reelgate. All rights reserved.

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
  - DI-Friendly: Passed to core components (DB, Redis, CMS client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Reelgate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) — backs payment records only; the
	// video access gate itself is stateless.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) — read-through catalog cache.
	RedisURL string `env:"REDIS_URL,required"`

	// VideoTokenSecret is the shared passphrase from which the AES key for
	// video grant tokens is derived. Both the issuer and validator hold the
	// derived key, so rotating it invalidates every outstanding grant.
	VideoTokenSecret string `env:"VIDEO_TOKEN_SECRET,required"`

	// JWTPubKeyPath points at the PEM-encoded RSA public key of the external
	// identity provider. Reelgate only verifies session tokens, never mints them.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Headless CMS (Contentful-compatible delivery API)
	CMSBaseURL     string `env:"CMS_BASE_URL"     envDefault:"https://cdn.contentful.com"`
	CMSSpaceID     string `env:"CMS_SPACE_ID,required"`
	CMSEnvironment string `env:"CMS_ENVIRONMENT"  envDefault:"master"`
	CMSAccessToken string `env:"CMS_ACCESS_TOKEN,required"`

	// CMSWebhookSecret authorizes publish-event callbacks that evict the
	// catalog cache.
	CMSWebhookSecret string `env:"CMS_WEBHOOK_SECRET,required"`

	// CatalogCacheTTL bounds staleness of cached CMS entries between
	// webhook-driven evictions.
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"15m"`

	// Payment gateway (Snap-compatible hosted checkout)
	PaymentBaseURL   string `env:"PAYMENT_BASE_URL" envDefault:"https://app.sandbox.midtrans.com"`
	PaymentServerKey string `env:"PAYMENT_SERVER_KEY,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
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
