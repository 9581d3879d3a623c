package scoring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scheduler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scoring"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

func scheduled(t *testing.T, spec itinerary.TripSpec) *itinerary.Itinerary {
	t.Helper()
	repo := catalog.NewInMemoryRepository(catalog.Seed()...)
	pool, err := candidate.NewBuilder(repo, candidate.Config{}).BuildPool(context.Background(), spec.City, spec.Preferences)
	require.NoError(t, err)
	return scheduler.New(scheduler.Config{}).Schedule(pool.Candidates, spec, scheduler.Options{})
}

func item(tier int, leg *transport.Leg) *itinerary.Item {
	return &itinerary.Item{
		Location:        &catalog.Location{ID: "x", PriceTier: tier, Rating: 4, Hours: catalog.AlwaysOpen()},
		Start:           geo.At(8, 0),
		End:             geo.At(9, 0),
		TransportToNext: leg,
	}
}

func TestEstimateCost(t *testing.T) {
	s := scoring.New(scoring.Config{})
	it := &itinerary.Itinerary{
		Spec: itinerary.TripSpec{DurationDays: 1},
		Items: []*itinerary.Item{
			item(1, &transport.Leg{Mode: transport.ModeGrabBike, CostVND: 20_000}),
			item(3, nil),
		},
	}
	assert.Equal(t, int64(50_000+20_000+400_000), s.EstimateCost(it))
	assert.Equal(t, int64(900_000), s.VisitCost(9), "tiers above 4 priced as 4")
}

func TestScore_RangeAndDeterminism(t *testing.T) {
	s := scoring.New(scoring.Config{})
	specs := []itinerary.TripSpec{
		{City: "Danang", DurationDays: 3},
		{City: "Danang", DurationDays: 2, Preferences: itinerary.Preferences{Pace: itinerary.PacePacked, Budget: itinerary.BudgetLuxury}},
		{City: "Danang", DurationDays: 5, Preferences: itinerary.Preferences{Pace: itinerary.PaceChill, Budget: itinerary.BudgetLow, Personas: []string{"foodie"}}},
		{City: "Hoi An", DurationDays: 4},
	}

	for _, spec := range specs {
		it := scheduled(t, spec)
		first := s.Score(it, spec.Preferences)
		assert.GreaterOrEqual(t, first, 0)
		assert.LessOrEqual(t, first, 100)
		assert.Equal(t, first, s.Score(it, spec.Preferences), "scoring is deterministic")
	}
}

func TestScore_EmptyItinerary(t *testing.T) {
	s := scoring.New(scoring.Config{})
	it := &itinerary.Itinerary{Spec: itinerary.TripSpec{DurationDays: 3}}
	assert.Equal(t, 0, s.Score(it, itinerary.Preferences{}))
}

func TestBreakdown_BudgetFit(t *testing.T) {
	s := scoring.New(scoring.Config{})
	spec := itinerary.TripSpec{DurationDays: 1, Preferences: itinerary.Preferences{Budget: itinerary.BudgetLow, Pace: itinerary.PaceChill}}

	// Budget day spend is 300k: three tier-2 visits cost 450k (+50%).
	over := &itinerary.Itinerary{Spec: spec, Items: []*itinerary.Item{item(2, nil), item(2, nil), item(2, nil)}}
	b := s.Breakdown(over, spec.Preferences)
	assert.InDelta(t, 1-(0.5-0.2)/0.8, b.BudgetFit, 1e-9)
	assert.Equal(t, 1.0, b.PaceFit)

	// Two tier-2 visits plus a tier-1 visit cost 350k (+16.7%), inside the band.
	within := &itinerary.Itinerary{Spec: spec, Items: []*itinerary.Item{item(2, nil), item(2, nil), item(1, nil)}}
	assert.Equal(t, 1.0, s.Breakdown(within, spec.Preferences).BudgetFit)
}

func TestBreakdown_PaceFit(t *testing.T) {
	s := scoring.New(scoring.Config{})
	prefs := itinerary.Preferences{Pace: itinerary.PacePacked, Budget: itinerary.BudgetLuxury}
	spec := itinerary.TripSpec{DurationDays: 1, Preferences: prefs}

	sparse := &itinerary.Itinerary{Spec: spec, Items: []*itinerary.Item{item(1, nil), item(1, nil)}}
	// Target 7, actual 2: diff 5, beyond the band by 4 of a 7-wide decay.
	assert.InDelta(t, 1-4.0/7, s.Breakdown(sparse, prefs).PaceFit, 1e-9)
}

func TestAnnotate(t *testing.T) {
	s := scoring.New(scoring.Config{})
	spec := itinerary.TripSpec{City: "Danang", DurationDays: 3}
	it := scheduled(t, spec)

	s.Annotate(it)

	assert.Equal(t, 3, it.Stats.DurationDays)
	assert.Equal(t, len(it.Items), it.Stats.LocationCount)
	assert.Equal(t, s.EstimateCost(it), it.Stats.EstimatedBudgetVND)
	assert.Equal(t, s.Score(it, spec.Preferences), it.Stats.MatchScore)
	assert.Greater(t, it.Stats.TotalDistanceKm, 0.0)
	assert.LessOrEqual(t, it.Stats.WalkingDistanceKm, it.Stats.TotalDistanceKm)
}
