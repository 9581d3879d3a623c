// Package app wires the itinerary engine from environment configuration.
// Both the API server and the worker build the same engine through it.
package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/handler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/database"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/provider/resilience"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/telemetry"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/weather"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/weather/openweathermap"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects storage backends and providers.
type Config struct {
	// CatalogDriver is memory, sqlite or postgres.
	CatalogDriver string

	// CatalogPath is the SQLite file for the sqlite driver.
	CatalogPath string

	// SeedCatalog loads the bundled locations into an empty sqlite catalog
	// or upserts them into postgres.
	SeedCatalog bool

	// StoreDriver is memory or postgres for itineraries.
	StoreDriver string

	// Migrate applies the database schema on start.
	Migrate bool

	// WeatherAPIKey enables OpenWeatherMap forecasts when set.
	WeatherAPIKey string

	// WeatherCacheTTL is how long forecasts stay fresh.
	WeatherCacheTTL time.Duration

	Database database.Config
	Planner  planner.Config
}

// ConfigFromEnv reads the engine configuration from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		CatalogDriver:   getEnv("CATALOG_DRIVER", DriverMemory),
		CatalogPath:     getEnv("CATALOG_SQLITE_PATH", "data/catalog.db"),
		StoreDriver:     getEnv("ITINERARY_STORE", DriverMemory),
		WeatherAPIKey:   os.Getenv("OPENWEATHERMAP_API_KEY"),
		WeatherCacheTTL: time.Hour,
		Database:        database.ConfigFromEnv(),
		Planner:         planner.ConfigFromEnv(),
	}
	cfg.SeedCatalog, _ = strconv.ParseBool(getEnv("CATALOG_SEED", "true"))
	cfg.Migrate, _ = strconv.ParseBool(getEnv("DB_MIGRATE", "false"))
	if ttl, err := time.ParseDuration(os.Getenv("WEATHER_CACHE_TTL")); err == nil && ttl > 0 {
		cfg.WeatherCacheTTL = ttl
	}
	return cfg
}

// Engine is the wired itinerary engine.
type Engine struct {
	Planner *planner.Service

	// Weather is nil when no forecast provider is configured.
	Weather *weather.Service

	// Providers tracks upstream provider health.
	Providers *resilience.Registry

	// Subsystems are the storage backends to probe for readiness.
	Subsystems map[string]handler.Pinger

	closers []func()
}

// Close releases storage connections.
func (e *Engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// Build connects storage and providers and assembles the planner.
func Build(ctx context.Context, cfg Config, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		Providers:  resilience.NewRegistry(),
		Subsystems: make(map[string]handler.Pinger),
	}

	var pool *pgxpool.Pool
	if cfg.CatalogDriver == DriverPostgres || cfg.StoreDriver == DriverPostgres {
		p, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pool = p
		e.closers = append(e.closers, pool.Close)
		e.Subsystems["postgres"] = pool
		if cfg.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				e.Close()
				return nil, err
			}
		}
	}

	locations, err := e.catalog(ctx, cfg, pool, logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	var store itinerary.Repository
	switch cfg.StoreDriver {
	case DriverPostgres:
		store = itinerary.NewPostgresRepository(pool)
	case DriverMemory, "":
		store = itinerary.NewInMemoryRepository()
	default:
		e.Close()
		return nil, fmt.Errorf("unknown itinerary store %q", cfg.StoreDriver)
	}

	metrics, err := telemetry.NewEngineMetrics(telemetry.Meter("planner"))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("create engine metrics: %w", err)
	}

	deps := planner.Dependencies{
		Catalog:     locations,
		Itineraries: store,
		Metrics:     metrics,
		Logger:      logger,
	}

	if cfg.WeatherAPIKey != "" {
		httpCfg := resilience.DefaultClientConfig(openweathermap.ProviderName)
		httpCfg.Registry = e.Providers
		httpCfg.Logger = logger

		e.Weather = weather.NewService(weather.ServiceConfig{
			Provider: openweathermap.NewClient(openweathermap.ClientConfig{
				APIKey:     cfg.WeatherAPIKey,
				HTTPClient: resilience.NewClient(httpCfg),
				Logger:     logger,
			}),
			CacheTTL: cfg.WeatherCacheTTL,
			Logger:   logger,
		})
		deps.Weather = e.Weather
	} else {
		logger.Warn().Msg("OPENWEATHERMAP_API_KEY not set, planning without forecasts")
	}

	e.Planner = planner.NewServiceFromConfig(cfg.Planner, deps)
	return e, nil
}

func (e *Engine) catalog(ctx context.Context, cfg Config, pool *pgxpool.Pool, logger zerolog.Logger) (catalog.Repository, error) {
	switch cfg.CatalogDriver {
	case DriverMemory, "":
		return catalog.NewInMemoryRepository(catalog.Seed()...), nil

	case DriverSQLite:
		repo, err := catalog.OpenSQLiteRepository(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = repo.Close() })
		e.Subsystems["catalog-sqlite"] = repo

		if cfg.SeedCatalog {
			n, err := repo.Count(ctx)
			if err != nil {
				return nil, fmt.Errorf("count catalog: %w", err)
			}
			if n == 0 {
				if err := repo.Upsert(ctx, catalog.Seed()); err != nil {
					return nil, fmt.Errorf("seed catalog: %w", err)
				}
				logger.Info().Str("path", cfg.CatalogPath).Msg("catalog seeded")
			}
		}
		return repo, nil

	case DriverPostgres:
		repo := catalog.NewPostgresRepository(pool)
		if cfg.SeedCatalog {
			if err := repo.Upsert(ctx, catalog.Seed()); err != nil {
				return nil, err
			}
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
