package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/primarycell/assessment/internal/config"
	"github.com/primarycell/assessment/internal/database"
	"github.com/primarycell/assessment/internal/handler"
	"github.com/primarycell/assessment/internal/jobs"
	"github.com/primarycell/assessment/internal/middleware"
	"github.com/primarycell/assessment/internal/repository"
	"github.com/primarycell/assessment/internal/repository/sqlite"
	"github.com/primarycell/assessment/internal/service"
	"github.com/primarycell/assessment/internal/telemetry"
	"github.com/primarycell/assessment/pkg/csrf"
	"github.com/primarycell/assessment/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := logging.Setup(cfg.Server.Env)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing is a no-op without an OTLP endpoint
	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	// Initialize lead store
	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	// Initialize CSRF token service
	secret, err := csrfSecret(cfg.CSRF, logger)
	if err != nil {
		return err
	}
	tokens, err := csrf.NewService(csrf.Config{
		Secret: secret,
		TTL:    cfg.CSRF.TTL,
		Issuer: cfg.CSRF.Issuer,
	})
	if err != nil {
		return fmt.Errorf("initialize csrf service: %w", err)
	}

	// Initialize services
	notifier := service.NewLogNotifier(logger)
	quizService := service.NewQuizService(service.QuizServiceConfig{
		Repo:            store,
		Notifier:        notifier,
		WelcomeVideoURL: cfg.Server.WelcomeVideoURL,
		Logger:          logger,
	})
	followUpService := service.NewFollowUpService(service.FollowUpServiceConfig{
		Repo:       store,
		Notifier:   notifier,
		BatchSize:  cfg.FollowUp.BatchSize,
		RetryDelay: cfg.FollowUp.RetryDelay,
		Logger:     logger,
	})

	// Initialize rate limiters and idempotency store
	defaultLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.DefaultLimit,
		Window: cfg.RateLimit.Window,
	})
	defer defaultLimiter.Stop()
	submitLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.SubmitLimit,
		Window: cfg.RateLimit.Window,
	})
	defer submitLimiter.Stop()
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	defer idempotencyStore.Stop()

	var tracer = telemetry.Tracer()
	if cfg.Telemetry.OTLPEndpoint == "" {
		tracer = nil
	}

	router := handler.NewRouter(handler.RouterConfig{
		Quiz:           quizService,
		Store:          quizService,
		Tokens:         tokens,
		Version:        version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CookieName:     cfg.CSRF.CookieName,
		SecureCookie:   cfg.CSRF.SecureCookie,
		DefaultLimiter: defaultLimiter,
		SubmitLimiter:  submitLimiter,
		Idempotency:    idempotencyStore,
		Metrics:        metrics,
		Tracer:         tracer,
		Logger:         logger,
	})

	// Initialize follow-up processor
	if cfg.FollowUp.Enabled {
		processor := jobs.NewFollowUpProcessor(jobs.FollowUpProcessorConfig{
			Runner:   followUpService,
			Interval: cfg.FollowUp.Interval,
			Metrics:  metrics,
			Logger:   logger,
		})
		processor.Start()
		defer processor.Stop()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("store", cfg.Store.Driver),
			slog.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore connects the configured lead store and returns it with its closer
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (service.LeadRepository, func() error, error) {
	switch cfg.Driver {
	case config.DriverSurrealDB:
		db := database.NewSurrealDB(database.Config{
			Host:      cfg.Surreal.Host,
			Port:      cfg.Surreal.Port,
			User:      cfg.Surreal.User,
			Password:  cfg.Surreal.Password,
			Namespace: cfg.Surreal.Namespace,
			Database:  cfg.Surreal.Database,
		})
		if err := db.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		repo := repository.NewLeadRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("connected to database",
			slog.String("host", cfg.Surreal.Host),
			slog.String("database", cfg.Surreal.Database),
		)
		return repo, db.Close, nil

	default:
		if cfg.SQLitePath != sqlite.MemoryPath {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o750); err != nil {
				return nil, nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("opened sqlite store", slog.String("path", cfg.SQLitePath))
		return store, store.Close, nil
	}
}

// csrfSecret resolves the signing secret. Development falls back to a
// per-process secret, which invalidates issued tokens on restart.
func csrfSecret(cfg config.CSRFConfig, logger *slog.Logger) ([]byte, error) {
	switch {
	case cfg.Secret != "":
		return []byte(cfg.Secret), nil
	case cfg.SecretFile != "":
		secret, err := csrf.LoadSecretFile(cfg.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("load csrf secret: %w", err)
		}
		return secret, nil
	default:
		secret, err := csrf.GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("generate csrf secret: %w", err)
		}
		logger.Warn("no CSRF_SECRET configured, using an ephemeral secret")
		return []byte(secret), nil
	}
}
