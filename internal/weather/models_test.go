package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/weather"
)

func TestCondition_IsWet(t *testing.T) {
	tests := []struct {
		condition weather.Condition
		expected  bool
	}{
		{weather.ConditionClear, false},
		{weather.ConditionClouds, false},
		{weather.ConditionRain, true},
		{weather.ConditionDrizzle, true},
		{weather.ConditionThunderstorm, true},
		{weather.ConditionMist, false},
		{weather.ConditionUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.condition), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.condition.IsWet())
		})
	}
}

func TestForecast_Day(t *testing.T) {
	f := &weather.Forecast{Days: []weather.DailyForecast{
		{Date: "2026-03-02", RainChance: 0.3},
		{Date: "2026-03-03", RainChance: 0.7},
	}}

	d, ok := f.Day("2026-03-03")
	assert.True(t, ok)
	assert.Equal(t, 0.7, d.RainChance)

	_, ok = f.Day("2026-03-09")
	assert.False(t, ok)

	var nilForecast *weather.Forecast
	_, ok = nilForecast.Day("2026-03-02")
	assert.False(t, ok)
}

func TestForecast_TripContext(t *testing.T) {
	f := &weather.Forecast{Days: []weather.DailyForecast{
		{Date: "2026-03-01", RainChance: 0.9},
		{Date: "2026-03-02", RainChance: 0.2, Condition: weather.ConditionClouds, TempDayC: 27},
		{Date: "2026-03-03", RainChance: 0.6, Condition: weather.ConditionRain},
	}}

	wc := f.TripContext(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 2)
	assert.Len(t, wc.Days, 2)

	assert.Equal(t, 1, wc.Days[0].Day)
	assert.Equal(t, "2026-03-02", wc.Days[0].Date)
	assert.Equal(t, "CLOUDS", wc.Days[0].Condition)
	assert.Equal(t, 27.0, wc.Days[0].TemperatureC)
	assert.False(t, wc.IsRainy(1))

	assert.Equal(t, 2, wc.Days[1].Day)
	assert.True(t, wc.IsRainy(2))
	assert.Equal(t, []int{2}, wc.RainyDays())
}

func TestForecast_TripContextBeyondHorizon(t *testing.T) {
	f := &weather.Forecast{}
	wc := f.TripContext(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), 3)
	assert.Empty(t, wc.Days)
	assert.Empty(t, wc.RainyDays())
}
