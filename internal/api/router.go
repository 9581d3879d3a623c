// Package api provides the HTTP API for the itinerary engine.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/handler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/middleware"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Auth validates bearer tokens on itinerary routes.
	Auth middleware.TokenValidator

	// Itineraries serves the itinerary endpoints.
	Itineraries handler.ItineraryService

	// OptimizeQueue accepts async optimizations. Optional.
	OptimizeQueue handler.OptimizeQueue

	// Subsystems are checked by the readiness probe.
	Subsystems map[string]handler.Pinger

	// Providers reports weather provider health. Optional.
	Providers *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "anvago-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Subsystems: cfg.Subsystems,
		Providers:  cfg.Providers,
	})
	metadataHandler := handler.NewMetadataHandler()
	itineraryHandler := handler.NewItineraryHandler(cfg.Itineraries, cfg.OptimizeQueue, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Auth)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Metadata endpoints (public)
		r.Route("/metadata", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Itinerary endpoints (authenticated), limited per user
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.With(middleware.RequireJSON, middleware.RateLimitByUser(middleware.GenerateRateLimit)).
				Post("/itineraries:generate", itineraryHandler.Generate)

			r.Route("/itineraries", func(r chi.Router) {
				r.With(middleware.RateLimitByUser(middleware.StandardRateLimit)).Get("/", itineraryHandler.List)
				r.Route("/{itineraryId}", func(r chi.Router) {
					r.With(middleware.RateLimitByUser(middleware.StandardRateLimit)).Get("/", itineraryHandler.Get)
					r.With(middleware.RequireJSON, middleware.RateLimitByUser(middleware.OptimizeRateLimit)).
						Post("/optimize", itineraryHandler.Optimize)
				})
			})
		})
	})

	return r
}
