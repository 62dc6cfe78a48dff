package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/platform/gemini"
	"github.com/phrazzld/studybuddy-api/internal/platform/inference"
	"github.com/phrazzld/studybuddy-api/internal/platform/rediscache"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// Version is reported by the health endpoints. It is set at build time.
var Version = "1.0.0"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sqlx.DB
	redis  *redis.Client

	// Generation
	pipeline   *generation.Pipeline
	strategies []string
	cache      *rediscache.Store

	// Service interfaces
	tokenService     auth.TokenService
	sessionService   service.SessionService
	flashcardService service.FlashcardService
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization. The application owns db
// from then on and closes it on failure.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	backend, err := app.setupGenerationBackend(ctx)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.pipeline, err = generation.NewPipeline(generation.PipelineConfig{
		Limits: generation.Limits{
			MinLength: cfg.Generation.MinContentLength,
			MaxLength: cfg.Generation.MaxContentLength,
		},
		DefaultCount:   cfg.Generation.DefaultCardCount,
		RequestTimeout: cfg.Generation.RequestTimeout,
	}, backend, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create generation pipeline: %w", err)
	}

	app.sessionService, err = service.NewSessionService(
		sqlstore.NewSessionStore(db, logger),
		app.tokenService,
		cfg.Session.Lifetime,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	app.flashcardService, err = service.NewFlashcardService(
		db,
		sqlstore.NewFlashcardSetStore(db, logger),
		app.sessionService,
		app.pipeline,
		logger,
		service.WithMaxCardCount(cfg.Generation.MaxCardCount),
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"strategies", app.strategies,
		"cache_enabled", app.cache != nil)
	return app, nil
}

// setupGenerationBackend builds the strategy cascade from the configured
// inference endpoints and Gemini, wrapping it in the Redis cache when one is
// configured. It returns a nil backend when no strategy has credentials.
func (app *application) setupGenerationBackend(ctx context.Context) (generation.Backend, error) {
	cfg := app.config.Generation

	endpoints := make([]inference.Endpoint, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		endpoints[i] = inference.Endpoint{
			Name:    ep.Name,
			Kind:    ep.Kind,
			URL:     ep.URL,
			APIKey:  ep.APIKey,
			Timeout: ep.Timeout,
		}
	}
	strategies, err := inference.NewStrategies(endpoints, cfg.APIKey, inference.NewHTTPClient())
	if err != nil {
		return nil, fmt.Errorf("failed to configure inference endpoints: %w", err)
	}

	if cfg.Gemini.Enabled() {
		g, err := gemini.NewStrategy(ctx, app.logger, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini strategy: %w", err)
		}
		strategies = append(strategies, g)
	}

	if len(strategies) == 0 {
		app.logger.Warn("No generation API key configured, using fallback generation only")
		return nil, nil
	}

	cascade, err := generation.NewCascade(strategies, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation cascade: %w", err)
	}
	app.strategies = cascade.Strategies()

	if app.config.Cache.RedisURL == "" {
		return cascade, nil
	}

	app.redis, err = rediscache.Open(ctx, app.config.Cache.RedisURL)
	if err != nil {
		// Generation works without the cache.
		app.logger.Warn("Generation cache unavailable, continuing without cache", "error", err)
		return cascade, nil
	}
	app.cache = rediscache.NewStore(app.redis, app.config.Cache.TTL)
	app.logger.Info("Generation cache enabled", "ttl", app.config.Cache.TTL)
	return generation.NewCachedBackend(cascade, app.cache, app.logger,
		generation.WithFlightTimeout(app.config.Generation.RequestTimeout)), nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
