package worker_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/worker"
)

// fakeWarmer records warmed cities and fails for the ones in failFor.
type fakeWarmer struct {
	mu      sync.Mutex
	warmed  []string
	failFor map[string]error
	skip    map[string]bool
}

func (f *fakeWarmer) Warm(_ context.Context, cities []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range cities {
		if err := f.failFor[c]; err != nil {
			return n, err
		}
		if f.skip[c] {
			continue
		}
		f.warmed = append(f.warmed, c)
		n++
	}
	return n, nil
}

func (f *fakeWarmer) cities() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.warmed...)
	sort.Strings(out)
	return out
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Len(t, cfg.Targets, 5)
}

func TestRefreshConfig_CitiesByPriority(t *testing.T) {
	cities := worker.DefaultRefreshConfig().Cities()

	require.Len(t, cities, 5)
	assert.ElementsMatch(t, []string{"danang", "hoian"}, cities[:2])
	assert.Equal(t, "hue", cities[2])
	assert.ElementsMatch(t, []string{"hanoi", "hochiminh"}, cities[3:])
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PUBSUB_PROJECT_ID", "anvago-dev")
	t.Setenv("PUBSUB_SUBSCRIPTION", "jobs-sub")
	t.Setenv("WEATHER_REFRESH_CITIES", "Hoi An, danang")
	t.Setenv("WEATHER_REFRESH_CONCURRENCY", "2")

	cfg := worker.ConfigFromEnv()

	assert.Equal(t, "anvago-dev", cfg.ProjectID)
	assert.Equal(t, "anvago-jobs", cfg.TopicName)
	assert.Equal(t, "jobs-sub", cfg.SubscriptionName)
	assert.Equal(t, 10, cfg.MaxOutstanding)
	assert.Equal(t, 2, cfg.Refresh.Concurrency)
	assert.Equal(t, []string{"Hoi An", "danang"}, cfg.Refresh.Cities())
}

func TestRefreshJob_Run(t *testing.T) {
	warmer := &fakeWarmer{}
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{Targets: []worker.RefreshTarget{
			{City: "danang", Priority: 1},
			{City: "hue", Priority: 2},
		}},
		Warmer: warmer,
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalCities)
	assert.Equal(t, 2, result.Warmed)
	assert.Zero(t, result.Failed)
	assert.Equal(t, []string{"danang", "hue"}, warmer.cities())

	m := job.Metrics()
	assert.Equal(t, int64(1), m.TotalRuns)
	assert.Equal(t, int64(2), m.Warmed)
	assert.False(t, m.LastRunAt.IsZero())
}

func TestRefreshJob_CollectsFailuresAndSkips(t *testing.T) {
	warmer := &fakeWarmer{
		failFor: map[string]error{"hanoi": errors.New("provider unavailable")},
		skip:    map[string]bool{"atlantis": true},
	}
	job := worker.NewRefreshJob(worker.RefreshJobConfig{Warmer: warmer, Logger: zerolog.Nop()})

	result := job.RunCities(context.Background(), []string{"danang", "hanoi", "atlantis"})

	assert.Equal(t, 1, result.Warmed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "hanoi", result.Errors[0].City)
	assert.Equal(t, []string{"hanoi: provider unavailable"}, job.Metrics().LastFailureMessages)
}

func TestRefreshJob_NoWarmer(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{Logger: zerolog.Nop()})

	result := job.Run(context.Background())

	assert.Equal(t, 5, result.TotalCities)
	assert.Equal(t, 5, result.Skipped)
	assert.Zero(t, result.Failed)
}
