// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storedeck/storefront/internal/auth"
	"github.com/storedeck/storefront/internal/catalog"
	"github.com/storedeck/storefront/internal/config"
	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/dashboard"
	"github.com/storedeck/storefront/internal/health"
	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/server"
	"github.com/storedeck/storefront/internal/session"
	"github.com/storedeck/storefront/internal/store"
	"github.com/storedeck/storefront/internal/user"
)

const (
	drainDelay = 5 * time.Second

	authRequestsPerWindow = 10
	authBurst             = 5
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKey := flag.Bool(
		"generate-key",
		false,
		"write a new session signing key to session.private_key_path and exit",
	)
	flag.Parse()

	if *generateKey {
		if err := writeSessionKey(*configPath); err != nil {
			slog.Error("generate key", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database, cfg.App.Name)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database schema migrated")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis, cfg.App.Name)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	sessionManager, err := session.NewManager(
		cfg.Session,
		!cfg.IsProduction(),
		logger,
	)
	if err != nil {
		return err
	}
	logger.Info("session manager initialized",
		"algorithm", "ES256",
		"max_age", sessionManager.MaxAge(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	resolver := session.NewResolver(sessionManager, session.ResolverConfig{
		Cookie: session.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.IsProduction(),
		},
		Revalidate: cfg.Session.RevalidateUser,
		Users:      userSvc,
		Denylist:   session.NewRedisDenylist(redis.Client),
		Logger:     logger,
	})

	storeSvc := store.NewService(store.NewRepository(db.DB), userSvc)
	storeHandler := store.NewHandler(storeSvc)

	catalogSvc := catalog.NewService(catalog.NewRepository(db.DB), storeSvc)
	catalogHandler := catalog.NewHandler(catalogSvc, storeSvc)

	authSvc := auth.NewService(userSvc)
	authHandler := auth.NewHandler(authSvc, resolver, logger)

	renderer, err := dashboard.NewRenderer(logger)
	if err != nil {
		return err
	}
	pageHandler := dashboard.NewHandler(
		storeSvc,
		catalogSvc,
		renderer,
		cfg.App.Name,
		logger,
	)

	healthHandler := health.NewHandler(
		cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		ServiceName:   cfg.Otel.ServiceName,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen:   true,
			BypassFunc: middleware.BypassHealth,
			Logger:     logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(resolver)
	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(authRequestsPerWindow, authBurst),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
		Logger:   logger,
	})
	userLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
		Logger:   logger,
	})

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			authHandler.RegisterRoutes(r, authenticator)
		})

		authenticated := func(next http.Handler) http.Handler {
			return authenticator(userLimiter.Handler(next))
		}

		userHandler.RegisterRoutes(r, authenticated)
		storeHandler.RegisterRoutes(r, authenticated)
		catalogHandler.RegisterRoutes(r, authenticated)
	})

	pageHandler.RegisterRoutes(router, resolver)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func writeSessionKey(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Session.PrivateKeyPath == "" {
		return fmt.Errorf("session.private_key_path is not set")
	}
	if err := session.GenerateKeyPair(cfg.Session.PrivateKeyPath); err != nil {
		return err
	}
	slog.Info("session key written", "path", cfg.Session.PrivateKeyPath)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
