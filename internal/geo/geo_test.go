package geo_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name    string
		a, b    geo.Coordinate
		want    float64
		epsilon float64
	}{
		{
			name:    "same point",
			a:       geo.Coordinate{Lat: 16.0544, Lon: 108.2022},
			b:       geo.Coordinate{Lat: 16.0544, Lon: 108.2022},
			want:    0,
			epsilon: 1e-9,
		},
		{
			name:    "Dragon Bridge to My Khe Beach",
			a:       geo.Coordinate{Lat: 16.0611, Lon: 108.2274},
			b:       geo.Coordinate{Lat: 16.0544, Lon: 108.2478},
			want:    2.3,
			epsilon: 0.2,
		},
		{
			name:    "Da Nang to Hoi An",
			a:       geo.Coordinate{Lat: 16.0544, Lon: 108.2022},
			b:       geo.Coordinate{Lat: 15.8801, Lon: 108.3380},
			want:    24.0,
			epsilon: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.HaversineKm(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.epsilon)
			assert.InDelta(t, got, geo.HaversineKm(tt.b, tt.a), 1e-9, "distance must be symmetric")
		})
	}
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, geo.Coordinate{Lat: 16, Lon: 108}.Validate())
	assert.ErrorIs(t, geo.Coordinate{Lat: 91, Lon: 0}.Validate(), geo.ErrInvalidCoordinates)
	assert.ErrorIs(t, geo.Coordinate{Lat: 0, Lon: -181}.Validate(), geo.ErrInvalidCoordinates)
}

func TestPathKm(t *testing.T) {
	a := geo.Coordinate{Lat: 16.0, Lon: 108.0}
	b := geo.Coordinate{Lat: 16.01, Lon: 108.0}
	c := geo.Coordinate{Lat: 16.02, Lon: 108.0}

	assert.InDelta(t, geo.HaversineKm(a, c), geo.PathKm([]geo.Coordinate{a, b, c}), 1e-6)
	assert.Zero(t, geo.PathKm(nil))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    geo.Clock
		wantErr bool
	}{
		{in: "08:00", want: geo.At(8, 0)},
		{in: "7:30", want: geo.At(7, 30)},
		{in: "24:00", want: geo.At(24, 0)},
		{in: "24:30", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := geo.ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, geo.ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_JSON(t *testing.T) {
	data, err := json.Marshal(geo.At(17, 5))
	require.NoError(t, err)
	assert.Equal(t, `"17:05"`, string(data))

	var c geo.Clock
	require.NoError(t, json.Unmarshal([]byte(`"06:45"`), &c))
	assert.Equal(t, geo.At(6, 45), c)
	assert.Equal(t, 15, geo.At(7, 0).Sub(c))
}
