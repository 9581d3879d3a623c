// Package main provides the entrypoint for the Anvago itinerary API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/handler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/middleware"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/app"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/auth"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/telemetry"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "anvago-api"

	envErr := godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Anvago API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	jwtCfg, err := auth.JWTConfigFromEnv()
	if errors.Is(err, auth.ErrMissingSigningKey) {
		jwtCfg.SigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(jwtCfg)

	appCfg := app.ConfigFromEnv()
	engine, err := app.Build(ctx, appCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build itinerary engine")
	}
	defer engine.Close()
	log.Info().
		Str("catalog", appCfg.CatalogDriver).
		Str("store", appCfg.StoreDriver).
		Bool("weather", engine.Weather != nil).
		Msg("itinerary engine ready")

	var queue handler.OptimizeQueue
	workerCfg := worker.ConfigFromEnv()
	if workerCfg.ProjectID != "" {
		publisher, err := worker.NewPublisher(ctx, worker.PublisherConfig{
			ProjectID: workerCfg.ProjectID,
			TopicName: workerCfg.TopicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job publisher")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close job publisher")
			}
		}()
		queue = publisher
		log.Info().Str("topic", workerCfg.TopicName).Msg("async optimization enabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		Auth:          jwtService,
		Itineraries:   engine.Planner,
		OptimizeQueue: queue,
		Subsystems:    engine.Subsystems,
		Providers:     engine.Providers,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
