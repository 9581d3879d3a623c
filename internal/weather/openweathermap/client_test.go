package openweathermap_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/provider/resilience"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/weather"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/weather/openweathermap"
)

// dailyEntry builds one entry of the OneCall "daily" array.
func dailyEntry(dt time.Time, pop float64, main, desc string) map[string]interface{} {
	return map[string]interface{}{
		"dt": dt.Unix(),
		"temp": map[string]float64{
			"day": 29.5,
			"min": 24.0,
			"max": 32.0,
		},
		"humidity": 78.0,
		"pop":      pop,
		"weather": []map[string]interface{}{
			{"id": 500, "main": main, "description": desc},
		},
	}
}

func newTestClient(url string) *openweathermap.Client {
	cfg := resilience.DefaultClientConfig("test")
	cfg.MaxRetries = 1
	return openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "****",
		OneCallURL: url,
		HTTPClient: resilience.NewClient(cfg),
	})
}

func TestClient_GetDailyForecast(t *testing.T) {
	// 05:00 UTC is noon in Da Nang (UTC+7).
	day1 := time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("lat"), "16.054")
		assert.Contains(t, r.URL.Query().Get("lon"), "108.202")
		assert.Equal(t, "****", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Contains(t, r.URL.Query().Get("exclude"), "hourly")

		response := map[string]interface{}{
			"lat":             16.0544,
			"lon":             108.2022,
			"timezone":        "Asia/Ho_Chi_Minh",
			"timezone_offset": 7 * 3600,
			"daily": []map[string]interface{}{
				dailyEntry(day1, 0.85, "Rain", "moderate rain"),
				dailyEntry(day1.AddDate(0, 0, 1), 0.1, "Clear", "clear sky"),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	forecast, err := newTestClient(server.URL).GetDailyForecast(context.Background(), 16.0544, 108.2022)
	require.NoError(t, err)
	require.NotNil(t, forecast)

	assert.Equal(t, 16.0544, forecast.Lat)
	assert.Equal(t, 108.2022, forecast.Lon)
	require.Len(t, forecast.Days, 2)

	d1 := forecast.Days[0]
	assert.Equal(t, "2026-03-02", d1.Date)
	assert.Equal(t, 0.85, d1.RainChance)
	assert.Equal(t, weather.ConditionRain, d1.Condition)
	assert.Equal(t, "moderate rain", d1.Description)
	assert.Equal(t, 29.5, d1.TempDayC)
	assert.Equal(t, 24.0, d1.TempMinC)
	assert.Equal(t, 32.0, d1.TempMaxC)

	assert.Equal(t, "2026-03-03", forecast.Days[1].Date)
	assert.Equal(t, weather.ConditionClear, forecast.Days[1].Condition)
}

func TestClient_GetDailyForecast_LocalDate(t *testing.T) {
	// 20:00 UTC on March 1 is already March 2 in UTC+7.
	late := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"timezone_offset": 7 * 3600,
			"daily":           []map[string]interface{}{dailyEntry(late, 0.2, "Clouds", "few clouds")},
		})
	}))
	defer server.Close()

	forecast, err := newTestClient(server.URL).GetDailyForecast(context.Background(), 16.0, 108.2)
	require.NoError(t, err)
	require.Len(t, forecast.Days, 1)
	assert.Equal(t, "2026-03-02", forecast.Days[0].Date)
}

func TestClient_GetDailyForecast_AllConditions(t *testing.T) {
	tests := []struct {
		owmCondition string
		expected     weather.Condition
	}{
		{"Clear", weather.ConditionClear},
		{"Clouds", weather.ConditionClouds},
		{"Rain", weather.ConditionRain},
		{"Drizzle", weather.ConditionDrizzle},
		{"Thunderstorm", weather.ConditionThunderstorm},
		{"Mist", weather.ConditionMist},
		{"Fog", weather.ConditionFog},
		{"Haze", weather.ConditionHaze},
		{"Smoke", weather.ConditionHaze},
		{"Snow", weather.ConditionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.owmCondition, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"daily": []map[string]interface{}{dailyEntry(time.Now(), 0.3, tt.owmCondition, "x")},
				})
			}))
			defer server.Close()

			forecast, err := newTestClient(server.URL).GetDailyForecast(context.Background(), 16.0, 108.2)
			require.NoError(t, err)
			require.Len(t, forecast.Days, 1)
			assert.Equal(t, tt.expected, forecast.Days[0].Condition)
		})
	}
}

func TestClient_GetDailyForecast_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetDailyForecast(context.Background(), 16.0, 108.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_GetDailyForecast_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).GetDailyForecast(ctx, 16.0, 108.2)
	require.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey: "****",
	})

	assert.Equal(t, "openweathermap", client.Name())
}
