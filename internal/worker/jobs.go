package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
)

// Job types carried in Message.JobType.
const (
	JobItineraryOptimize = "itinerary_optimize"
	JobWeatherRefresh    = "weather_refresh"
	JobHealthCheck       = "health_check"
)

// Processing errors that are never retried.
var (
	ErrMalformedMessage = errors.New("malformed job message")
	ErrUnknownJob       = errors.New("unknown job type")
)

// Message is the JSON payload of a job.
type Message struct {
	JobType     string   `json:"job_type"`
	ItineraryID string   `json:"itinerary_id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Criterion   string   `json:"criterion,omitempty"`
	Apply       bool     `json:"apply,omitempty"`
	Cities      []string `json:"cities,omitempty"`
}

// Optimizer runs an optimization against a stored itinerary.
type Optimizer interface {
	Optimize(ctx context.Context, rc planner.RequestContext, id string, req planner.OptimizeRequest) (*optimizer.Result, error)
}

// ProcessorConfig holds configuration for the job processor.
type ProcessorConfig struct {
	Optimizer  Optimizer
	RefreshJob *RefreshJob
	Logger     zerolog.Logger
}

// Processor decodes job messages and dispatches them.
type Processor struct {
	optimizer Optimizer
	refresh   *RefreshJob
	logger    zerolog.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		optimizer: cfg.Optimizer,
		refresh:   cfg.RefreshJob,
		logger:    cfg.Logger,
	}
}

// Process handles one job payload.
func (p *Processor) Process(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch msg.JobType {
	case JobItineraryOptimize:
		return p.optimize(ctx, msg)
	case JobWeatherRefresh:
		return p.refreshWeather(ctx, msg)
	case JobHealthCheck:
		return p.healthCheck(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

func (p *Processor) optimize(ctx context.Context, msg Message) error {
	if msg.ItineraryID == "" {
		return fmt.Errorf("%w: itinerary_id is required", ErrMalformedMessage)
	}
	if p.optimizer == nil {
		return errors.New("optimizer not configured")
	}

	logger := p.logger.With().
		Str("itinerary_id", msg.ItineraryID).
		Str("criterion", msg.Criterion).
		Logger()
	rc := planner.NewRequestContext(msg.UserID, logger)

	res, err := p.optimizer.Optimize(ctx, rc, msg.ItineraryID, planner.OptimizeRequest{
		Criterion: msg.Criterion,
		Apply:     msg.Apply,
	})
	if err != nil {
		return fmt.Errorf("optimize %s: %w", msg.ItineraryID, err)
	}

	logger.Info().
		Int("changes", len(res.Changes)).
		Bool("apply", msg.Apply).
		Msg("queued optimization finished")
	return nil
}

func (p *Processor) refreshWeather(ctx context.Context, msg Message) error {
	if p.refresh == nil {
		return errors.New("weather refresh not configured")
	}

	var result *RefreshResult
	if len(msg.Cities) > 0 {
		result = p.refresh.RunCities(ctx, msg.Cities)
	} else {
		result = p.refresh.Run(ctx)
	}

	if result.Failed > result.Warmed {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalCities)
	}
	return nil
}

// healthCheck warms the highest-priority city to verify provider
// connectivity end to end.
func (p *Processor) healthCheck(ctx context.Context) error {
	if p.refresh == nil {
		return nil
	}
	cities := p.refresh.config.Cities()
	if len(cities) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result := p.refresh.RunCities(ctx, cities[:1])
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %s", result.Errors[0].Error)
	}
	return nil
}

// Retryable reports whether a failed job should be redelivered. Malformed
// payloads, unknown jobs, bad criteria and missing itineraries will fail the
// same way again.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var verr *itinerary.ValidationError
	switch {
	case errors.Is(err, ErrMalformedMessage),
		errors.Is(err, ErrUnknownJob),
		errors.Is(err, itinerary.ErrItineraryNotFound),
		errors.As(err, &verr):
		return false
	}
	return true
}
