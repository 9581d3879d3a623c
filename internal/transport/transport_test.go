package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// offsetNorth returns a point roughly km kilometers north of origin.
func offsetNorth(origin geo.Coordinate, km float64) geo.Coordinate {
	return geo.Coordinate{Lat: origin.Lat + km/111.195, Lon: origin.Lon}
}

func TestCalculator_ModeSelection(t *testing.T) {
	calc := transport.NewCalculator(transport.Config{})
	origin := geo.Coordinate{Lat: 16.06, Lon: 108.22}

	tests := []struct {
		name    string
		km      float64
		want    transport.Mode
		minutes int
		cost    int64
	}{
		{name: "short hop is walked", km: 0.3, want: transport.ModeWalk, minutes: 5, cost: 0},
		{name: "walk threshold", km: 1.19, want: transport.ModeWalk, minutes: 16, cost: 0},
		{name: "mid distance rides a bike", km: 5, want: transport.ModeGrabBike, minutes: 12, cost: 25000},
		{name: "long distance takes a car", km: 20, want: transport.ModeGrabCar, minutes: 40, cost: 240000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := calc.Leg(origin, offsetNorth(origin, tt.km))
			assert.Equal(t, tt.want, leg.Mode)
			assert.Equal(t, tt.minutes, leg.DurationMinutes)
			assert.InDelta(t, tt.cost, leg.CostVND, 50)
			assert.InDelta(t, tt.km, leg.DistanceKm, 0.02)
		})
	}
}

func TestCalculator_MinimumDuration(t *testing.T) {
	calc := transport.NewCalculator(transport.Config{})
	p := geo.Coordinate{Lat: 16.06, Lon: 108.22}

	leg := calc.Leg(p, p)
	assert.Equal(t, transport.ModeWalk, leg.Mode)
	assert.Equal(t, 5, leg.DurationMinutes)
	assert.Zero(t, leg.CostVND)
}

func TestCalculator_LegWithMode(t *testing.T) {
	calc := transport.NewCalculator(transport.Config{})
	origin := geo.Coordinate{Lat: 16.06, Lon: 108.22}
	dest := offsetNorth(origin, 3)

	walk, err := calc.LegWithMode(origin, dest, transport.ModeWalk)
	require.NoError(t, err)
	assert.Equal(t, 40, walk.DurationMinutes)

	bike, err := calc.Reprice(walk, transport.ModeGrabBike)
	require.NoError(t, err)
	assert.Equal(t, transport.ModeGrabBike, bike.Mode)
	assert.Equal(t, 7, bike.DurationMinutes)
	assert.InDelta(t, 15000, bike.CostVND, 100)

	_, err = calc.LegWithMode(origin, dest, transport.Mode("teleport"))
	assert.ErrorIs(t, err, transport.ErrUnknownMode)
}

func TestCalculator_CustomConfig(t *testing.T) {
	calc := transport.NewCalculator(transport.Config{WalkMaxKm: 2, CarRateVND: 20000})
	origin := geo.Coordinate{Lat: 16.06, Lon: 108.22}

	assert.Equal(t, transport.ModeWalk, calc.Leg(origin, offsetNorth(origin, 1.8)).Mode)
	assert.InDelta(t, 200000, calc.Leg(origin, offsetNorth(origin, 10)).CostVND, 100)
	assert.Equal(t, 4.5, calc.Config().WalkSpeedKmh, "unset fields keep defaults")
}
