// Copyright (c) 2026 Reelgate. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.

# Routing Zones

The router is split into three zones with different middleware profiles:

  - JSON API (/api/v1/...): full chain including the global request timeout.
  - Video plane (/video-proxy, /video-security): no global timeout, since a
    proxied video stream legitimately outlives any JSON deadline.
  - Webhooks (/webhooks/...): unauthenticated, verified by shared secrets.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reelgate/reelgate/internal/catalog"
	"github.com/reelgate/reelgate/internal/payments"
	"github.com/reelgate/reelgate/internal/platform/config"
	"github.com/reelgate/reelgate/internal/platform/constants"
	"github.com/reelgate/reelgate/internal/platform/middleware"
	"github.com/reelgate/reelgate/internal/videogate"
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

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// VideoGate handles the video proxy and security negotiation endpoints.
	VideoGate *videogate.Handler

	// Catalog serves course and lesson metadata.
	Catalog *catalog.Handler

	// ContentWebhook evicts cached catalog entries on CMS publish events.
	ContentWebhook *catalog.WebhookHandler

	// Payments handles checkout, history, and gateway notifications.
	Payments *payments.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Video Plane
	// No global timeout here: a proxied stream runs as long as playback does.
	// Rate limiting still applies to the negotiation endpoint.
	r.Group(func(video chi.Router) {
		video.With(middleware.RateLimit(context)).Post(constants.VideoSecurityPath, h.VideoGate.Negotiate)
		video.Get(constants.VideoProxyPath, h.VideoGate.Proxy)
	})

	// # Webhooks
	// Callers authenticate via shared secret, not sessions.
	r.Group(func(hooks chi.Router) {
		hooks.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		hooks.Post("/webhooks/content", h.ContentWebhook.HandleContentEvent)
		hooks.Post("/webhooks/payment", h.Payments.Notification)
	})

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		api.Use(middleware.RateLimit(context))
		api.Mount("/payments", h.Payments.Routes(middleware.RequireAuth))
		api.Mount("/", h.Catalog.Routes())
	})

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

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
