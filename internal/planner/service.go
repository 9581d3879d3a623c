package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/telemetry"
)

// WeatherSource resolves a per-day weather snapshot for a trip.
type WeatherSource interface {
	TripWeather(ctx context.Context, city string, start time.Time, days int) (*itinerary.WeatherContext, error)
}

// ServiceConfig holds configuration for the planner service.
type ServiceConfig struct {
	// Builder builds candidate pools. Required.
	Builder *candidate.Builder

	// Repository persists itineraries. Required.
	Repository itinerary.Repository

	// Assembler generates variants (default: NewAssembler over Builder).
	Assembler *Assembler

	// Optimizer revises itineraries (default: optimizer.New).
	Optimizer *optimizer.Optimizer

	// Weather resolves forecasts when a trip has a start date but no
	// snapshot. Optional.
	Weather WeatherSource

	// Metrics records engine metrics. Optional.
	Metrics *telemetry.EngineMetrics

	// Tracer for spans (default: telemetry.Tracer("planner")).
	Tracer trace.Tracer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service persists generated itineraries and runs optimizations against
// stored ones.
type Service struct {
	builder   *candidate.Builder
	repo      itinerary.Repository
	assembler *Assembler
	optimizer *optimizer.Optimizer
	weather   WeatherSource
	metrics   *telemetry.EngineMetrics
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewService creates a new planner service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Assembler == nil {
		cfg.Assembler = NewAssembler(AssemblerConfig{Builder: cfg.Builder, Logger: cfg.Logger})
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = optimizer.New(optimizer.Config{Scorer: cfg.Assembler.Scorer(), Logger: cfg.Logger})
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.Tracer("planner")
	}
	return &Service{
		builder:   cfg.Builder,
		repo:      cfg.Repository,
		assembler: cfg.Assembler,
		optimizer: cfg.Optimizer,
		weather:   cfg.Weather,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger,
	}
}

// Generate assembles itineraries for a trip and stores them as drafts owned
// by the caller. An empty result list means no location matched.
func (s *Service) Generate(ctx context.Context, rc RequestContext, spec itinerary.TripSpec) ([]*Result, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Generate", trace.WithAttributes(
		attribute.String("trip.city", spec.City),
		attribute.Int("trip.days", spec.DurationDays),
	))
	defer span.End()
	started := time.Now()

	if spec.Weather == nil {
		spec.Weather = rc.Weather
	}
	var fallback *itinerary.Diagnostic
	if spec.Weather == nil {
		spec.Weather, fallback = s.resolveWeather(ctx, rc, spec)
	}

	results, err := s.assembler.Generate(ctx, spec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return nil, err
	}

	now := rc.now()
	for _, res := range results {
		it := res.Itinerary
		if fallback != nil {
			it.Diagnostics = append(it.Diagnostics, *fallback)
			res.Diagnostics = it.Diagnostics
		}
		it.UserID = rc.UserID
		it.Version = 1
		it.CreatedAt = now
		it.UpdatedAt = now
		if err := s.repo.Create(ctx, it); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("store itinerary: %w", err)
		}
		for _, d := range it.Diagnostics {
			s.metrics.RecordDiagnostic(ctx, d.Code)
		}
	}

	s.metrics.RecordGenerate(ctx, spec.City, len(results), time.Since(started))
	span.SetAttributes(attribute.Int("results", len(results)))
	rc.Logger.Info().
		Str("city", spec.City).
		Int("days", spec.DurationDays).
		Int("results", len(results)).
		Dur("took", time.Since(started)).
		Msg("itineraries generated")

	return results, nil
}

// resolveWeather fetches a forecast when the trip has a start date. Failures
// degrade to no weather with a diagnostic.
func (s *Service) resolveWeather(ctx context.Context, rc RequestContext, spec itinerary.TripSpec) (*itinerary.WeatherContext, *itinerary.Diagnostic) {
	start, ok := spec.Start()
	if !ok || s.weather == nil {
		return nil, nil
	}

	wc, err := s.weather.TripWeather(ctx, spec.City, start, spec.DurationDays)
	if err != nil {
		rc.Logger.Warn().Err(err).Str("city", spec.City).Msg("weather unavailable, planning without it")
		return nil, &itinerary.Diagnostic{
			Code:    itinerary.DiagWeatherFallback,
			Message: "weather forecast unavailable; planned without rain adjustments",
		}
	}
	return wc, nil
}

// Page is one page of stored itineraries.
type Page struct {
	Items      []*Result `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// List returns the caller's itineraries, newest first.
func (s *Service) List(ctx context.Context, rc RequestContext, opts itinerary.ListOptions) (*Page, error) {
	res, err := s.repo.List(ctx, rc.UserID, opts)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	page := &Page{Items: make([]*Result, 0, len(res.Items)), NextCursor: res.NextCursor}
	for _, it := range res.Items {
		page.Items = append(page.Items, Present(it, s.assembler.Scorer()))
	}
	return page, nil
}

// Get returns one of the caller's itineraries.
func (s *Service) Get(ctx context.Context, rc RequestContext, id string) (*Result, error) {
	it, err := s.load(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	return Present(it, s.assembler.Scorer()), nil
}

func (s *Service) load(ctx context.Context, rc RequestContext, id string) (*itinerary.Itinerary, error) {
	var (
		it  *itinerary.Itinerary
		err error
	)
	if rc.UserID == "" {
		it, err = s.repo.Get(ctx, id)
	} else {
		it, err = s.repo.GetByUserAndID(ctx, rc.UserID, id)
	}
	if err != nil {
		if errors.Is(err, itinerary.ErrItineraryNotFound) {
			return nil, itinerary.ErrItineraryNotFound
		}
		return nil, fmt.Errorf("load itinerary: %w", err)
	}
	return it, nil
}

// Gate returns the per-itinerary optimization gate.
func (s *Service) Gate() *optimizer.Gate {
	return s.optimizer.Gate()
}

// OptimizeRequest selects a criterion and whether to store the result.
type OptimizeRequest struct {
	Criterion string `json:"criterion"`
	Apply     bool   `json:"apply"`
}

// Optimize revises a stored itinerary. With Apply set and a non-empty diff
// the revision replaces the stored itinerary at the next version. The
// optimization gate for id is held from load to store. An empty UserID in rc
// loads without an ownership check (worker jobs).
func (s *Service) Optimize(ctx context.Context, rc RequestContext, id string, req OptimizeRequest) (*optimizer.Result, error) {
	criterion, err := optimizer.ParseCriterion(req.Criterion)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "planner.Optimize", trace.WithAttributes(
		attribute.String("itinerary.id", id),
		attribute.String("criterion", string(criterion)),
	))
	defer span.End()

	release, err := s.optimizer.Gate().Acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	it, err := s.load(ctx, rc, id)
	if err != nil {
		return nil, err
	}

	weather := rc.Weather
	var fallback *itinerary.Diagnostic
	if weather == nil && it.Spec.Weather == nil && criterion == optimizer.CriterionWeather {
		weather, fallback = s.resolveWeather(ctx, rc, it.Spec)
	}

	pool, err := s.builder.BuildPool(ctx, it.Spec.City, it.Spec.Preferences)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build candidate pool: %w", err)
	}

	res, err := s.optimizer.Revise(ctx, it, criterion, pool.Candidates, weather)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "optimize failed")
		return nil, err
	}
	if fallback != nil {
		res.Diagnostics = append(res.Diagnostics, *fallback)
	}

	applied := false
	if req.Apply && res.Changed() {
		opt := res.Optimized
		opt.Version = it.Version + 1
		opt.UpdatedAt = rc.now()
		if err := s.repo.Update(ctx, opt); err != nil {
			span.RecordError(err)
			if errors.Is(err, itinerary.ErrVersionConflict) {
				return nil, itinerary.ErrVersionConflict
			}
			return nil, fmt.Errorf("store optimized itinerary: %w", err)
		}
		applied = true
	}

	s.metrics.RecordOptimize(ctx, string(criterion), res.Changed(), applied)
	span.SetAttributes(attribute.Int("changes", len(res.Changes)), attribute.Bool("applied", applied))
	rc.Logger.Info().
		Str("itinerary_id", id).
		Str("criterion", string(criterion)).
		Int("changes", len(res.Changes)).
		Bool("applied", applied).
		Msg("itinerary optimized")

	return res, nil
}
