// Copyright (c) 2026 Reelgate. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Video Access: Grant token lifetime and proxy route paths.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "reelgate-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	//
	// Proxied video streams can run for minutes, so this is deliberately
	// generous compared to a JSON-only API.
	DefaultWriteTimeout = 10 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for JSON API request lifecycles.
	// The video proxy routes are mounted outside this timeout.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Video Access

const (
	// VideoGrantTTL is the lifetime of a minted video access token.
	// Once issued, a grant stays valid until natural expiry; there is no
	// revocation list.
	VideoGrantTTL = 2 * time.Hour

	// AnonymousUserID is the sentinel stored in grants minted without an
	// authenticated session. Anonymous grants are not bound to a requester.
	AnonymousUserID = "anonymous"

	// VideoProxyPath is the same-origin path that indirects clients away
	// from the real asset location.
	VideoProxyPath = "/video-proxy"

	// VideoSecurityPath is the negotiation endpoint the player shell calls
	// to obtain a grant and proxy URL.
	VideoSecurityPath = "/video-security"
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim in session JWTs minted by the
	// external identity provider.
	AuthIssuer = "reelgate.app"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixCatalog = "catalog:"
	RedisPrefixLesson  = "catalog:lesson:"
	RedisPrefixCourses = "catalog:courses"
)
