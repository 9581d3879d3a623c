package planner

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scheduler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scoring"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/telemetry"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// Config holds the tunable engine settings. Zero values fall back to the
// component defaults.
type Config struct {
	MaxResults       int
	MaxOverlap       float64
	MinPool          int
	PoolCap          int
	DayStart         geo.Clock
	Cutoff           geo.Clock
	DayBudgetMinutes int
	FatigueMinutes   int
	Transport        transport.Config
}

// ConfigFromEnv reads engine settings from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		MaxResults:       envInt("PLANNER_MAX_RESULTS", 3),
		MaxOverlap:       envFloat("PLANNER_MAX_OVERLAP", 0.7),
		MinPool:          envInt("PLANNER_MIN_POOL", 12),
		PoolCap:          envInt("PLANNER_POOL_CAP", 200),
		DayStart:         envClock("PLANNER_DAY_START", geo.At(8, 0)),
		Cutoff:           envClock("PLANNER_CUTOFF", geo.At(23, 0)),
		DayBudgetMinutes: envInt("PLANNER_DAY_BUDGET_MINUTES", 12*60),
		FatigueMinutes:   envInt("PLANNER_FATIGUE_MINUTES", 25),
		Transport:        transport.DefaultConfig(),
	}
	cfg.Transport.BikeRateVND = envFloat("TRANSPORT_BIKE_RATE_VND", cfg.Transport.BikeRateVND)
	cfg.Transport.CarRateVND = envFloat("TRANSPORT_CAR_RATE_VND", cfg.Transport.CarRateVND)
	return cfg
}

// Dependencies are the collaborators a service needs.
type Dependencies struct {
	Catalog     catalog.Repository
	Itineraries itinerary.Repository
	Weather     WeatherSource
	Metrics     *telemetry.EngineMetrics
	Logger      zerolog.Logger
}

// NewServiceFromConfig wires the engine components into a service.
func NewServiceFromConfig(cfg Config, deps Dependencies) *Service {
	calc := transport.NewCalculator(cfg.Transport)
	sched := scheduler.New(scheduler.Config{
		DayStart:         cfg.DayStart,
		Cutoff:           cfg.Cutoff,
		DayBudgetMinutes: cfg.DayBudgetMinutes,
		Transport:        calc,
		Logger:           deps.Logger,
	})
	scorer := scoring.New(scoring.Config{})
	builder := candidate.NewBuilder(deps.Catalog, candidate.Config{
		MinPool: cfg.MinPool,
		PoolCap: cfg.PoolCap,
		Logger:  deps.Logger,
	})

	return NewService(ServiceConfig{
		Builder:    builder,
		Repository: deps.Itineraries,
		Assembler: NewAssembler(AssemblerConfig{
			Builder:    builder,
			Scheduler:  sched,
			Scorer:     scorer,
			MaxResults: cfg.MaxResults,
			MaxOverlap: cfg.MaxOverlap,
			Logger:     deps.Logger,
		}),
		Optimizer: optimizer.New(optimizer.Config{
			Scheduler:      sched,
			Scorer:         scorer,
			FatigueMinutes: cfg.FatigueMinutes,
			Logger:         deps.Logger,
		}),
		Weather: deps.Weather,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
	})
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func envClock(key string, def geo.Clock) geo.Clock {
	if v, err := geo.ParseClock(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
