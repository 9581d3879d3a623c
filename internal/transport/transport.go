// Package transport estimates the mode, duration and cost of travel legs
// between consecutive visits.
package transport

import (
	"errors"
	"math"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

// ErrUnknownMode indicates an unsupported transport mode.
var ErrUnknownMode = errors.New("unknown transport mode")

// Mode represents a transport mode.
type Mode string

const (
	ModeWalk     Mode = "walk"
	ModeGrabBike Mode = "grab_bike"
	ModeGrabCar  Mode = "grab_car"
)

// Valid reports whether the mode is supported.
func (m Mode) Valid() bool {
	switch m {
	case ModeWalk, ModeGrabBike, ModeGrabCar:
		return true
	default:
		return false
	}
}

// Leg is the transport segment between two consecutive visits.
type Leg struct {
	Mode            Mode    `json:"mode"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	CostVND         int64   `json:"costVnd"`
}

// Config holds the thresholds, speeds and rates used to price legs.
type Config struct {
	// WalkMaxKm is the longest distance walked (default: 1.2 km).
	WalkMaxKm float64

	// BikeMaxKm is the longest distance ridden by motorbike taxi (default: 8 km).
	BikeMaxKm float64

	// Speeds in km/h (defaults: walk 4.5, bike 25, car 30 in urban traffic).
	WalkSpeedKmh float64
	BikeSpeedKmh float64
	CarSpeedKmh  float64

	// Per-kilometer rates in VND (defaults: walk 0, bike 5,000, car 12,000).
	BikeRateVND float64
	CarRateVND  float64

	// MinDurationMinutes covers boarding and alighting (default: 5).
	MinDurationMinutes int
}

// DefaultConfig returns the default pricing configuration.
func DefaultConfig() Config {
	return Config{
		WalkMaxKm:          1.2,
		BikeMaxKm:          8,
		WalkSpeedKmh:       4.5,
		BikeSpeedKmh:       25,
		CarSpeedKmh:        30,
		BikeRateVND:        5000,
		CarRateVND:         12000,
		MinDurationMinutes: 5,
	}
}

// Calculator computes transport legs. It is pure and safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator, filling zero-valued fields with defaults.
func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.WalkMaxKm == 0 {
		cfg.WalkMaxKm = def.WalkMaxKm
	}
	if cfg.BikeMaxKm == 0 {
		cfg.BikeMaxKm = def.BikeMaxKm
	}
	if cfg.WalkSpeedKmh == 0 {
		cfg.WalkSpeedKmh = def.WalkSpeedKmh
	}
	if cfg.BikeSpeedKmh == 0 {
		cfg.BikeSpeedKmh = def.BikeSpeedKmh
	}
	if cfg.CarSpeedKmh == 0 {
		cfg.CarSpeedKmh = def.CarSpeedKmh
	}
	if cfg.BikeRateVND == 0 {
		cfg.BikeRateVND = def.BikeRateVND
	}
	if cfg.CarRateVND == 0 {
		cfg.CarRateVND = def.CarRateVND
	}
	if cfg.MinDurationMinutes == 0 {
		cfg.MinDurationMinutes = def.MinDurationMinutes
	}
	return &Calculator{cfg: cfg}
}

// Config returns the effective configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Leg computes the leg between two points, choosing the mode by distance.
func (c *Calculator) Leg(from, to geo.Coordinate) Leg {
	km := geo.HaversineKm(from, to)
	return c.price(c.modeFor(km), km)
}

// LegWithMode computes the leg between two points using the given mode.
func (c *Calculator) LegWithMode(from, to geo.Coordinate, mode Mode) (Leg, error) {
	if !mode.Valid() {
		return Leg{}, ErrUnknownMode
	}
	return c.price(mode, geo.HaversineKm(from, to)), nil
}

// Reprice recomputes duration and cost for an existing leg's distance with a new mode.
func (c *Calculator) Reprice(leg Leg, mode Mode) (Leg, error) {
	if !mode.Valid() {
		return Leg{}, ErrUnknownMode
	}
	return c.price(mode, leg.DistanceKm), nil
}

func (c *Calculator) modeFor(km float64) Mode {
	switch {
	case km <= c.cfg.WalkMaxKm:
		return ModeWalk
	case km <= c.cfg.BikeMaxKm:
		return ModeGrabBike
	default:
		return ModeGrabCar
	}
}

func (c *Calculator) price(mode Mode, km float64) Leg {
	var speed, rate float64
	switch mode {
	case ModeWalk:
		speed = c.cfg.WalkSpeedKmh
	case ModeGrabBike:
		speed, rate = c.cfg.BikeSpeedKmh, c.cfg.BikeRateVND
	case ModeGrabCar:
		speed, rate = c.cfg.CarSpeedKmh, c.cfg.CarRateVND
	}

	minutes := int(math.Round(km / speed * 60))
	if minutes < c.cfg.MinDurationMinutes {
		minutes = c.cfg.MinDurationMinutes
	}

	return Leg{
		Mode:            mode,
		DistanceKm:      math.Round(km*100) / 100,
		DurationMinutes: minutes,
		CostVND:         int64(math.Round(km * rate)),
	}
}
