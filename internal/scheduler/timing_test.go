package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scheduler"
)

func threeStopDay(t *testing.T) (*itinerary.Itinerary, []*itinerary.Item) {
	t.Helper()
	pool := []candidate.Candidate{
		{Location: testLocation("a", "museum", 16.060, 108.220), Affinity: 0.9},
		{Location: testLocation("b", "cafe", 16.062, 108.221), Affinity: 0.8},
		{Location: testLocation("c", "park", 16.064, 108.222), Affinity: 0.7},
	}
	spec := itinerary.TripSpec{City: "Danang", DurationDays: 1, Preferences: itinerary.Preferences{Pace: itinerary.PaceChill}}
	it := newScheduler().Schedule(pool, spec, scheduler.Options{})
	require.Len(t, it.Items, 3)
	return it, it.Days()[0]
}

func TestRetime(t *testing.T) {
	it, day := threeStopDay(t)
	s := newScheduler()

	reordered := []*itinerary.Item{day[0], day[2], day[1]}
	out, ok := s.Retime(reordered, it.Spec)
	require.True(t, ok)

	assert.Equal(t, []string{"a", "c", "b"}, []string{out[0].Location.ID, out[1].Location.ID, out[2].Location.ID})
	assert.Equal(t, geo.At(8, 0), out[0].Start)
	assert.Nil(t, out[2].TransportToNext)
	for i, item := range out {
		assert.Equal(t, i, item.Order)
	}
	assert.Equal(t, 1, day[2].Order, "input items untouched")

	it.SetDay(1, out)
	require.NoError(t, it.Validate())
}

func TestRetime_Infeasible(t *testing.T) {
	it, day := threeStopDay(t)
	day[2].Location.Hours = catalog.Daily(geo.At(6, 0), geo.At(8, 30))

	_, ok := newScheduler().Retime([]*itinerary.Item{day[0], day[1], day[2]}, it.Spec)
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	it, day := threeStopDay(t)
	s := newScheduler()

	alt := testLocation("b2", "cafe", 16.0621, 108.2211)
	out, ok := s.Replace(day, 1, alt, 0.75, it.Spec)
	require.True(t, ok)

	assert.Equal(t, "itm_b2", out[1].ID)
	assert.Equal(t, day[1].Start, out[1].Start, "time slot preserved")
	assert.Equal(t, "b", day[1].Location.ID, "input items untouched")

	it.SetDay(1, out)
	require.NoError(t, it.Validate())

	far := testLocation("far", "cafe", 16.5, 108.6)
	_, ok = s.Replace(day, 1, far, 0.75, it.Spec)
	assert.False(t, ok, "travel time to a distant replacement breaks the slot")

	closed := testLocation("closed", "cafe", 16.0621, 108.2211)
	closed.Hours = catalog.Daily(geo.At(18, 0), geo.At(22, 0))
	_, ok = s.Replace(day, 1, closed, 0.75, it.Spec)
	assert.False(t, ok)
}

func TestAppend(t *testing.T) {
	it, day := threeStopDay(t)
	s := newScheduler()

	extra := testLocation("d", "market", 16.065, 108.223)
	out, ok := s.Append(day, extra, 0.6, it.Spec)
	require.True(t, ok)
	require.Len(t, out, 4)

	assert.NotNil(t, out[2].TransportToNext)
	assert.Equal(t, 3, out[3].Order)
	assert.GreaterOrEqual(t, out[3].Start, out[2].End.Add(out[2].TransportToNext.DurationMinutes))
	assert.Nil(t, day[2].TransportToNext, "input items untouched")

	late := testLocation("late", "market", 16.065, 108.223)
	late.Hours = catalog.Daily(geo.At(20, 0), geo.At(23, 0))
	_, ok = s.Append(day, late, 0.6, it.Spec)
	assert.False(t, ok)
}

func TestActiveMinutes(t *testing.T) {
	_, day := threeStopDay(t)
	total := 0
	for _, item := range day {
		total += 45
		if item.TransportToNext != nil {
			total += item.TransportToNext.DurationMinutes
		}
	}
	assert.Equal(t, total, scheduler.ActiveMinutes(day))
}
