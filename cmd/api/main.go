// Copyright (c) 2026 Reelgate. All rights reserved.

// Command api is the entry point for the Reelgate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the video gate, catalog, and payment domains.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelgate/reelgate/internal/api"
	"github.com/reelgate/reelgate/internal/catalog"
	"github.com/reelgate/reelgate/internal/payments"
	"github.com/reelgate/reelgate/internal/platform/config"
	"github.com/reelgate/reelgate/internal/platform/constants"
	"github.com/reelgate/reelgate/internal/platform/migration"
	pgstore "github.com/reelgate/reelgate/internal/platform/postgres"
	redisstore "github.com/reelgate/reelgate/internal/platform/redis"
	"github.com/reelgate/reelgate/internal/platform/sec"
	"github.com/reelgate/reelgate/internal/videogate"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Reelgate] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// App context lives until shutdown; background middleware workers
	// (rate-limiter cleanup) stop when it is cancelled.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Verification ───────────────────────────────────────────
	verifier, err := sec.NewSessionVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize session verifier")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	codec, err := videogate.NewCodec(cfg.VideoTokenSecret)
	must(log, err, "initialize video token codec")
	gate := videogate.NewGate(codec)

	cmsClient := catalog.NewClient(cfg.CMSBaseURL, cfg.CMSSpaceID, cfg.CMSEnvironment, cfg.CMSAccessToken)
	lessonCache := catalog.NewCache(cmsClient, rdb, cfg.CatalogCacheTTL, log)
	catalogHandler := catalog.NewHandler(lessonCache)
	contentWebhook := catalog.NewWebhookHandler(lessonCache, cfg.CMSWebhookSecret)

	videoService := videogate.NewService(gate, codec, lessonCache)
	videoHandler := videogate.NewHandler(videoService, gate, lessonCache)

	snapClient := payments.NewSnapClient(cfg.PaymentBaseURL, cfg.PaymentServerKey)
	paymentStore := payments.NewPostgresStore(pool)
	paymentService := payments.NewService(paymentStore, snapClient, log)
	paymentHandler := payments.NewHandler(paymentService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:       liveness,
		Readiness:      readiness,
		VideoGate:      videoHandler,
		Catalog:        catalogHandler,
		ContentWebhook: contentWebhook,
		Payments:       paymentHandler,
	}

	server := api.NewServer(appCtx, cfg, log, verifier, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	appCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
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
