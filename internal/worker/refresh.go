package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ForecastWarmer fetches and caches forecasts for cities, returning how
// many were warmed. Unknown cities are skipped.
type ForecastWarmer interface {
	Warm(ctx context.Context, cities []string) (int, error)
}

// RefreshJob keeps weather forecasts cached for the configured cities.
type RefreshJob struct {
	config RefreshConfig
	warmer ForecastWarmer
	logger zerolog.Logger

	mu      sync.RWMutex
	metrics RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	TotalRuns           int64
	Warmed              int64
	Failed              int64
	LastRunAt           time.Time
	LastRunDuration     time.Duration
	LastFailureMessages []string
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config RefreshConfig
	Warmer ForecastWarmer
	Logger zerolog.Logger
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config.Targets = DefaultRefreshTargets()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &RefreshJob{
		config: config,
		warmer: cfg.Warmer,
		logger: cfg.Logger,
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalCities int
	Warmed      int
	Skipped     int
	Failed      int
	Errors      []RefreshError
}

// RefreshError records one city that failed to refresh.
type RefreshError struct {
	City  string
	Error string
}

// Run warms every configured city.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	return j.RunCities(ctx, j.config.Cities())
}

// RunCities warms the given cities with bounded concurrency. Failures are
// collected, never returned, so one bad city does not stop the rest.
func (j *RefreshJob) RunCities(ctx context.Context, cities []string) *RefreshResult {
	result := &RefreshResult{StartTime: time.Now(), TotalCities: len(cities)}

	j.logger.Info().
		Int("cities", len(cities)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting weather refresh")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)
	for _, city := range cities {
		g.Go(func() error {
			warmed, err := j.refreshCity(gctx, city)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				result.Errors = append(result.Errors, RefreshError{City: city, Error: err.Error()})
			case warmed == 0:
				result.Skipped++
			default:
				result.Warmed++
			}
			return nil
		})
	}
	_ = g.Wait()

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	j.record(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("weather refresh completed")

	return result
}

func (j *RefreshJob) refreshCity(ctx context.Context, city string) (int, error) {
	if j.warmer == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	n, err := j.warmer.Warm(ctx, []string{city})
	if err != nil {
		j.logger.Warn().Err(err).Str("city", city).Msg("weather refresh failed")
	}
	return n, err
}

func (j *RefreshJob) record(result *RefreshResult) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.Warmed += int64(result.Warmed)
	j.metrics.Failed += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.LastFailureMessages = j.metrics.LastFailureMessages[:0]
	for _, e := range result.Errors {
		j.metrics.LastFailureMessages = append(j.metrics.LastFailureMessages, e.City+": "+e.Error)
	}
}

// Metrics returns a copy of the current metrics.
func (j *RefreshJob) Metrics() RefreshMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	m := j.metrics
	m.LastFailureMessages = append([]string(nil), j.metrics.LastFailureMessages...)
	return m
}
