package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
)

type fakeWeather struct {
	wc    *itinerary.WeatherContext
	err   error
	calls int
}

func (f *fakeWeather) TripWeather(_ context.Context, _ string, _ time.Time, _ int) (*itinerary.WeatherContext, error) {
	f.calls++
	return f.wc, f.err
}

func newService(weather planner.WeatherSource) (*planner.Service, *itinerary.InMemoryRepository) {
	store := itinerary.NewInMemoryRepository()
	deps := planner.Dependencies{
		Catalog:     catalog.NewInMemoryRepository(catalog.Seed()...),
		Itineraries: store,
		Logger:      zerolog.Nop(),
	}
	if weather != nil {
		deps.Weather = weather
	}
	return planner.NewServiceFromConfig(planner.ConfigFromEnv(), deps), store
}

func rcFor(userID string) planner.RequestContext {
	return planner.RequestContext{
		UserID: userID,
		Logger: zerolog.Nop(),
		Now:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestService_GeneratePersistsDrafts(t *testing.T) {
	svc, store := newService(nil)
	ctx := context.Background()

	results, err := svc.Generate(ctx, rcFor("usr_1"), itinerary.TripSpec{City: "Danang", DurationDays: 2})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	listed, err := store.List(ctx, "usr_1", itinerary.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, listed.Items, len(results))

	for _, res := range results {
		stored, err := store.Get(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "usr_1", stored.UserID)
		assert.Equal(t, 1, stored.Version)
		assert.Equal(t, rcFor("").Now, stored.CreatedAt)
	}

	page, err := svc.List(ctx, rcFor("usr_1"), itinerary.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, len(results))

	empty, err := svc.List(ctx, rcFor("usr_2"), itinerary.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestService_GetChecksOwner(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	results, err := svc.Generate(ctx, rcFor("usr_1"), itinerary.TripSpec{City: "Danang", DurationDays: 1})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	got, err := svc.Get(ctx, rcFor("usr_1"), results[0].ID)
	require.NoError(t, err)
	assert.Equal(t, results[0].ID, got.ID)
	assert.Equal(t, results[0].MatchScore, got.MatchScore)

	_, err = svc.Get(ctx, rcFor("usr_2"), results[0].ID)
	assert.ErrorIs(t, err, itinerary.ErrItineraryNotFound)

	_, err = svc.Get(ctx, rcFor("usr_1"), "itn_missing")
	assert.ErrorIs(t, err, itinerary.ErrItineraryNotFound)
}

func TestService_GenerateUnknownCity(t *testing.T) {
	svc, store := newService(nil)

	results, err := svc.Generate(context.Background(), rcFor("usr_1"), itinerary.TripSpec{City: "Atlantis", DurationDays: 2})
	require.NoError(t, err)
	assert.Empty(t, results)

	listed, err := store.List(context.Background(), "usr_1", itinerary.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)
}

func TestService_GenerateResolvesWeather(t *testing.T) {
	weather := &fakeWeather{wc: &itinerary.WeatherContext{Days: []itinerary.DayWeather{
		{Day: 1, Date: "2026-03-02", RainChance: 0.8, Condition: "rain"},
	}}}
	svc, _ := newService(weather)

	results, err := svc.Generate(context.Background(), rcFor("usr_1"), itinerary.TripSpec{
		City:         "Danang",
		DurationDays: 2,
		StartDate:    "2026-03-02",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, weather.calls)
	for _, res := range results {
		assert.True(t, res.Itinerary.Spec.Weather.IsRainy(1))
	}
}

func TestService_GenerateWeatherFallback(t *testing.T) {
	weather := &fakeWeather{err: errors.New("provider down")}
	svc, _ := newService(weather)

	results, err := svc.Generate(context.Background(), rcFor("usr_1"), itinerary.TripSpec{
		City:         "Danang",
		DurationDays: 2,
		StartDate:    "2026-03-02",
	})
	require.NoError(t, err, "weather failures degrade, they do not fail the request")
	require.NotEmpty(t, results)

	for _, res := range results {
		codes := make([]string, 0, len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			codes = append(codes, d.Code)
		}
		assert.Contains(t, codes, itinerary.DiagWeatherFallback)
	}
}

func TestService_GenerateSkipsWeatherWithoutStartDate(t *testing.T) {
	weather := &fakeWeather{}
	svc, _ := newService(weather)

	_, err := svc.Generate(context.Background(), rcFor("usr_1"), itinerary.TripSpec{City: "Danang", DurationDays: 2})
	require.NoError(t, err)
	assert.Zero(t, weather.calls)
}

func TestService_OptimizeApply(t *testing.T) {
	svc, store := newService(nil)
	ctx := context.Background()

	results, err := svc.Generate(ctx, rcFor("usr_1"), itinerary.TripSpec{
		City:         "Danang",
		DurationDays: 2,
		Preferences:  itinerary.Preferences{Pace: itinerary.PaceChill},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	id := results[0].ID

	preview, err := svc.Optimize(ctx, rcFor("usr_1"), id, planner.OptimizeRequest{Criterion: "maximize"})
	require.NoError(t, err)
	require.True(t, preview.Changed())

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version, "preview does not store")

	applied, err := svc.Optimize(ctx, rcFor("usr_1"), id, planner.OptimizeRequest{Criterion: "maximize", Apply: true})
	require.NoError(t, err)
	require.True(t, applied.Changed())

	stored, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Len(t, stored.Items, len(applied.Optimized.Items))
}

func TestService_OptimizeErrors(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.Optimize(ctx, rcFor("usr_1"), "itn_any", planner.OptimizeRequest{Criterion: "scenic"})
	assert.ErrorIs(t, err, optimizer.ErrUnknownCriterion)

	_, err = svc.Optimize(ctx, rcFor("usr_1"), "itn_missing", planner.OptimizeRequest{Criterion: "route"})
	assert.ErrorIs(t, err, itinerary.ErrItineraryNotFound)
}

func TestService_OptimizeWithoutOwner(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	results, err := svc.Generate(ctx, rcFor("usr_1"), itinerary.TripSpec{City: "Danang", DurationDays: 1})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	res, err := svc.Optimize(ctx, rcFor(""), results[0].ID, planner.OptimizeRequest{Criterion: "route"})
	require.NoError(t, err)
	assert.Equal(t, optimizer.CriterionRoute, res.Criterion)
}

func TestService_OptimizeHoldsGateThroughStore(t *testing.T) {
	svc, store := newService(nil)
	ctx := context.Background()

	results, err := svc.Generate(ctx, rcFor("usr_1"), itinerary.TripSpec{
		City:         "Danang",
		DurationDays: 2,
		Preferences:  itinerary.Preferences{Pace: itinerary.PaceChill},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	id := results[0].ID

	release, err := svc.Gate().Acquire(id)
	require.NoError(t, err)

	_, err = svc.Optimize(ctx, rcFor("usr_1"), id, planner.OptimizeRequest{Criterion: "maximize", Apply: true})
	assert.ErrorIs(t, err, optimizer.ErrOptimizationInProgress)

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version, "a concurrent optimize stores nothing")

	release()

	res, err := svc.Optimize(ctx, rcFor("usr_1"), id, planner.OptimizeRequest{Criterion: "maximize", Apply: true})
	require.NoError(t, err)
	require.True(t, res.Changed())
	assert.False(t, svc.Gate().InFlight(id), "gate released after store")

	stored, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
}
