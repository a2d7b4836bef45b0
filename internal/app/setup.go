package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthdata/samarth/db"
	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/config"
	"github.com/samarthdata/samarth/internal/datacache"
	"github.com/samarthdata/samarth/internal/datagov"
	"github.com/samarthdata/samarth/internal/discovery"
	"github.com/samarthdata/samarth/internal/interpreter"
	"github.com/samarthdata/samarth/internal/llm"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/observability"
	"github.com/samarthdata/samarth/internal/qa"
	"github.com/samarthdata/samarth/internal/session"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup - call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.New(log.Config{})
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				slog.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing registers on Genkit's TracerProvider, so it runs first.
	a.otelCleanup = provideOtelShutdown(ctx, cfg)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.LLM = llm.New(g, llm.Config{
		ModelName: cfg.FullModelName(),
		Logger:    logger,
	})

	a.DataGov, err = datagov.New(datagov.Config{
		BaseURL:   cfg.DataGovBaseURL,
		APIKey:    cfg.DataGovAPIKey,
		PageLimit: cfg.PageLimit,
		MaxPages:  cfg.MaxPages,
		Timeout:   time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating data.gov.in client: %w", err)
	}

	a.Catalog = catalog.New(pool, logger)
	if err := a.Catalog.Seed(ctx); err != nil {
		return nil, err
	}

	a.Sessions = session.New(pool, logger)

	a.Cache, err = provideCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	a.Discovery = discovery.New(a.DataGov, a.Catalog, a.LLM, logger)
	a.Interpreter = interpreter.New(a.LLM, logger)

	var cache qa.TableCache
	if a.Cache != nil {
		cache = a.Cache
	}
	a.Engine = qa.New(a.DataGov, a.Catalog, a.Discovery, a.Interpreter, cache, qa.Config{
		MaxDatasets: cfg.MaxDatasets,
		MaxRows:     cfg.MaxRowsPerDataset,
	}, logger)

	return a, nil
}

// provideOtelShutdown sets up tracing before Genkit initialization.
func provideOtelShutdown(ctx context.Context, cfg *config.Config) func() {
	shutdown, err := observability.Setup(ctx, cfg.Tracing)
	if err != nil || shutdown == nil {
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideGenkit initializes Genkit with the Google AI plugin.
// The plugin reads GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return g, nil
}

// provideDBPool runs migrations and creates a PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideCache creates the table cache. A missing cache dir disables caching
// rather than failing startup.
func provideCache(cfg *config.Config, logger log.Logger) (*datacache.Cache, error) {
	if cfg.CacheDir == "" {
		return nil, nil
	}

	ttl := time.Duration(cfg.CacheTTLMin) * time.Minute
	cache, err := datacache.New(cfg.CacheDir, ttl, logger)
	if err != nil {
		slog.Warn("table cache disabled", "dir", cfg.CacheDir, "error", err)
		return nil, nil
	}
	return cache, nil
}
