// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

// Command api is the entry point for the BGE portal HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
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

	"github.com/bgecorp/portal/internal/api"
	"github.com/bgecorp/portal/internal/iam/admin"
	"github.com/bgecorp/portal/internal/iam/auth"
	"github.com/bgecorp/portal/internal/platform/config"
	"github.com/bgecorp/portal/internal/platform/constants"
	"github.com/bgecorp/portal/internal/platform/migration"
	"github.com/bgecorp/portal/internal/platform/notify"
	pgstore "github.com/bgecorp/portal/internal/platform/postgres"
	redisstore "github.com/bgecorp/portal/internal/platform/redis"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/internal/portal/directory"
	"github.com/bgecorp/portal/internal/portal/navigation"
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

	log.Info("[Portal] service_initializing")

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
		slog.Bool("federated_login", cfg.OIDCEnabled()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

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

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Federated Identity Provider (optional) ─────────────────────────
	// When the OIDC relying-party settings are absent the portal still runs;
	// the federated endpoints answer 503 and password login carries the load.
	var identityProvider auth.IdentityProvider
	if cfg.OIDCEnabled() {
		oidcProvider, err := auth.NewOIDCProvider(startupCtx, cfg)
		must(log, err, "initialize oidc provider")
		identityProvider = oidcProvider
		log.Info("federated_login_enabled", slog.String("issuer", cfg.OIDCIssuerURL))
	} else {
		log.Warn("federated_login_disabled: OIDC settings not configured")
	}

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	notifier := notify.NewLogNotifier(log)

	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetRepository := auth.NewResetTicketRepository(rdb)
	stateRepository := auth.NewOIDCStateRepository(rdb)

	policy := auth.Policy{
		AllowedEmailDomains: cfg.AllowedEmailDomains,
		BootstrapEmail:      cfg.BootstrapEmail,
		PortalBaseURL:       cfg.PortalBaseURL,
	}

	authService := auth.NewService(
		userRepository,
		sessionRepository,
		resetRepository,
		stateRepository,
		jwtSvc,
		identityProvider,
		notifier,
		policy,
		log,
	)
	authHandler := auth.NewHandler(authService)

	adminService := admin.NewService(userRepository, sessionRepository, notifier, log)
	adminHandler := admin.NewHandler(adminService)

	navigationHandler := navigation.NewHandler(authService)

	employeeRepository := directory.NewEmployeeRepository(pool)
	directoryService := directory.NewService(employeeRepository, log)
	directoryHandler := directory.NewHandler(directoryService, authService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Admin:      adminHandler,
		Navigation: navigationHandler,
		Directory:  directoryHandler,
	}

	// The server context outlives startup: the rate limiter's cleanup
	// goroutine runs until shutdown, not until the startup deadline.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

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
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

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
