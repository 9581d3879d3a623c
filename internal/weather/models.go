// Package weather resolves daily forecasts into the per-day weather snapshot
// the itinerary engine plans against.
package weather

import (
	"errors"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// IsWet reports whether the condition brings precipitation.
func (c Condition) IsWet() bool {
	switch c {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm:
		return true
	default:
		return false
	}
}

// DailyForecast is the forecast for one local calendar day.
type DailyForecast struct {
	// Date is the local date (YYYY-MM-DD).
	Date string

	// RainChance is the probability of precipitation (0-1).
	RainChance float64

	Condition   Condition
	Description string

	// Temperatures in Celsius.
	TempDayC float64
	TempMinC float64
	TempMaxC float64
}

// Forecast is a multi-day forecast for a point.
type Forecast struct {
	Lat  float64
	Lon  float64
	Days []DailyForecast

	FetchedAt time.Time
}

// Day returns the forecast for a local date.
func (f *Forecast) Day(date string) (DailyForecast, bool) {
	if f == nil {
		return DailyForecast{}, false
	}
	for _, d := range f.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DailyForecast{}, false
}

// TripContext maps the forecast onto trip days starting at start. Days
// beyond the forecast horizon are left out, which the engine treats as dry.
func (f *Forecast) TripContext(start time.Time, days int) *itinerary.WeatherContext {
	wc := &itinerary.WeatherContext{}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(itinerary.DateLayout)
		d, ok := f.Day(date)
		if !ok {
			continue
		}
		wc.Days = append(wc.Days, itinerary.DayWeather{
			Day:          i + 1,
			Date:         date,
			RainChance:   d.RainChance,
			Condition:    string(d.Condition),
			TemperatureC: d.TempDayC,
		})
	}
	return wc
}
