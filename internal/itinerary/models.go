// Package itinerary defines trip requests, scheduled itineraries and the
// persistence boundary for them.
package itinerary

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// Repository errors.
var (
	ErrItineraryNotFound = errors.New("itinerary not found")
	ErrVersionConflict   = errors.New("itinerary was modified concurrently")
)

// ErrInvalidItinerary indicates an itinerary that breaks a scheduling invariant.
var ErrInvalidItinerary = errors.New("invalid itinerary")

// Trip limits.
const (
	MaxDurationDays = 14
	DateLayout      = "2006-01-02"
)

// RainyThreshold is the rain chance at or above which a day counts as rainy.
const RainyThreshold = 0.6

// Pace is the activity density target of a trip.
type Pace string

const (
	PaceChill    Pace = "chill"
	PaceBalanced Pace = "balanced"
	PacePacked   Pace = "packed"
)

// Paces lists all supported paces.
var Paces = []Pace{PaceChill, PaceBalanced, PacePacked}

// Valid reports whether the pace is supported.
func (p Pace) Valid() bool {
	switch p {
	case PaceChill, PaceBalanced, PacePacked:
		return true
	default:
		return false
	}
}

// Capacity returns the target number of visits per day.
func (p Pace) Capacity() int {
	switch p {
	case PaceChill:
		return 3
	case PacePacked:
		return 7
	default:
		return 5
	}
}

// BudgetTier is the spending level of a trip.
type BudgetTier string

const (
	BudgetLow      BudgetTier = "budget"
	BudgetModerate BudgetTier = "moderate"
	BudgetLuxury   BudgetTier = "luxury"
)

// BudgetTiers lists all supported budget tiers.
var BudgetTiers = []BudgetTier{BudgetLow, BudgetModerate, BudgetLuxury}

// Valid reports whether the budget tier is supported.
func (b BudgetTier) Valid() bool {
	switch b {
	case BudgetLow, BudgetModerate, BudgetLuxury:
		return true
	default:
		return false
	}
}

// Preferences is the traveler's preference bundle.
type Preferences struct {
	Personas      []string   `json:"personas,omitempty"`
	LikedVibes    []string   `json:"likedVibes,omitempty"`
	DislikedVibes []string   `json:"dislikedVibes,omitempty"`
	Interests     []string   `json:"interests,omitempty"`
	Pace          Pace       `json:"pace"`
	Budget        BudgetTier `json:"budget"`
}

// WithDefaults returns a normalized copy: terms are lowercased, trimmed and
// de-duplicated, pace defaults to balanced and budget to moderate.
func (p Preferences) WithDefaults() Preferences {
	out := Preferences{
		Personas:      normalizeTerms(p.Personas),
		LikedVibes:    normalizeTerms(p.LikedVibes),
		DislikedVibes: normalizeTerms(p.DislikedVibes),
		Interests:     normalizeTerms(p.Interests),
		Pace:          Pace(strings.ToLower(strings.TrimSpace(string(p.Pace)))),
		Budget:        BudgetTier(strings.ToLower(strings.TrimSpace(string(p.Budget)))),
	}
	if out.Pace == "" {
		out.Pace = PaceBalanced
	}
	if out.Budget == "" {
		out.Budget = BudgetModerate
	}
	return out
}

func normalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DayWeather is the forecast for one trip day.
type DayWeather struct {
	Day          int     `json:"day"`
	Date         string  `json:"date,omitempty"`
	RainChance   float64 `json:"rainChance"`
	Condition    string  `json:"condition,omitempty"`
	TemperatureC float64 `json:"temperatureC,omitempty"`
}

// WeatherContext is a resolved per-day forecast snapshot. A nil context
// means no rain anywhere.
type WeatherContext struct {
	Days []DayWeather `json:"days"`
}

// ForDay returns the forecast for a trip day.
func (w *WeatherContext) ForDay(day int) (DayWeather, bool) {
	if w == nil {
		return DayWeather{}, false
	}
	for _, d := range w.Days {
		if d.Day == day {
			return d, true
		}
	}
	return DayWeather{}, false
}

// IsRainy reports whether the day's rain chance reaches RainyThreshold.
func (w *WeatherContext) IsRainy(day int) bool {
	d, ok := w.ForDay(day)
	return ok && d.RainChance >= RainyThreshold
}

// RainyDays returns the rainy trip days in ascending order.
func (w *WeatherContext) RainyDays() []int {
	if w == nil {
		return nil
	}
	var days []int
	for _, d := range w.Days {
		if d.RainChance >= RainyThreshold {
			days = append(days, d.Day)
		}
	}
	sort.Ints(days)
	return days
}

// TripSpec is the generation request.
type TripSpec struct {
	City         string          `json:"city"`
	DurationDays int             `json:"durationDays"`
	StartDate    string          `json:"startDate,omitempty"`
	Preferences  Preferences     `json:"preferences"`
	Weather      *WeatherContext `json:"weather,omitempty"`
}

// Start returns the parsed start date, if one was given.
func (s TripSpec) Start() (time.Time, bool) {
	if s.StartDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Weekday returns the weekday of a trip day (1-based). The second result is
// false when the trip has no start date.
func (s TripSpec) Weekday(day int) (time.Weekday, bool) {
	start, ok := s.Start()
	if !ok {
		return time.Sunday, false
	}
	return start.AddDate(0, 0, day-1).Weekday(), true
}

// Item is a scheduled visit.
type Item struct {
	ID              string            `json:"id"`
	Location        *catalog.Location `json:"location"`
	Day             int               `json:"day"`
	Order           int               `json:"order"`
	Start           geo.Clock         `json:"start"`
	End             geo.Clock         `json:"end"`
	TransportToNext *transport.Leg    `json:"transportToNext,omitempty"`
	IsOptional      bool              `json:"isOptional,omitempty"`
	Affinity        float64           `json:"affinity"`
}

// ItemID returns the item identifier for a location. Locations appear at
// most once per itinerary, so the location id is sufficient.
func ItemID(locationID string) string {
	return "itm_" + locationID
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	cpy := *i
	if i.Location != nil {
		cpy.Location = i.Location.Clone()
	}
	if i.TransportToNext != nil {
		leg := *i.TransportToNext
		cpy.TransportToNext = &leg
	}
	return &cpy
}

// Stats are derived itinerary figures.
type Stats struct {
	DurationDays       int     `json:"durationDays"`
	LocationCount      int     `json:"locationCount"`
	EstimatedBudgetVND int64   `json:"estimatedBudgetVnd"`
	TotalDistanceKm    float64 `json:"totalDistanceKm"`
	WalkingDistanceKm  float64 `json:"walkingDistanceKm"`
	MatchScore         int     `json:"matchScore"`
}

// Diagnostic codes.
const (
	DiagPoolRelaxed      = "pool_relaxed"
	DiagEmptyPool        = "empty_pool"
	DiagOpeningHours     = "opening_hours_miss"
	DiagDayBudget        = "day_budget_reached"
	DiagPoolExhausted    = "pool_exhausted"
	DiagNoFeasible       = "no_feasible_candidate"
	DiagShortDay         = "short_day"
	DiagRainPenalty      = "rain_penalty"
	DiagWeatherFallback  = "weather_unavailable"
	DiagNoImprovement    = "no_improvement"
	DiagInvalidTransform = "invalid_transform"
	DiagInvalidLocation  = "invalid_location"
)

// Diagnostic records a skip or degrade decision.
type Diagnostic struct {
	Code       string `json:"code"`
	Day        int    `json:"day,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	Message    string `json:"message"`
}

// Itinerary is a day-by-day schedule of visits.
type Itinerary struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId,omitempty"`
	Title       string       `json:"title"`
	Variant     string       `json:"variant"`
	Spec        TripSpec     `json:"spec"`
	Items       []*Item      `json:"items"`
	Stats       Stats        `json:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy of the itinerary.
func (it *Itinerary) Clone() *Itinerary {
	cpy := *it
	cpy.Spec = it.Spec.clone()
	cpy.Items = make([]*Item, len(it.Items))
	for i, item := range it.Items {
		cpy.Items[i] = item.Clone()
	}
	cpy.Diagnostics = append([]Diagnostic(nil), it.Diagnostics...)
	return &cpy
}

func (s TripSpec) clone() TripSpec {
	cpy := s
	cpy.Preferences.Personas = append([]string(nil), s.Preferences.Personas...)
	cpy.Preferences.LikedVibes = append([]string(nil), s.Preferences.LikedVibes...)
	cpy.Preferences.DislikedVibes = append([]string(nil), s.Preferences.DislikedVibes...)
	cpy.Preferences.Interests = append([]string(nil), s.Preferences.Interests...)
	if s.Weather != nil {
		cpy.Weather = &WeatherContext{Days: append([]DayWeather(nil), s.Weather.Days...)}
	}
	return cpy
}

// Days groups items by day. Index 0 holds day 1; each day is sorted by order.
func (it *Itinerary) Days() [][]*Item {
	days := make([][]*Item, it.Spec.DurationDays)
	for _, item := range it.Items {
		if item.Day < 1 || item.Day > len(days) {
			continue
		}
		days[item.Day-1] = append(days[item.Day-1], item)
	}
	for _, d := range days {
		sort.SliceStable(d, func(i, j int) bool { return d[i].Order < d[j].Order })
	}
	return days
}

// SetDay replaces the items of a day, renumbering orders from zero.
func (it *Itinerary) SetDay(day int, items []*Item) {
	kept := it.Items[:0:0]
	for _, item := range it.Items {
		if item.Day != day {
			kept = append(kept, item)
		}
	}
	for i, item := range items {
		item.Day = day
		item.Order = i
		kept = append(kept, item)
	}
	it.Items = kept
	it.Sort()
}

// Sort orders items by day, then by order.
func (it *Itinerary) Sort() {
	sort.SliceStable(it.Items, func(i, j int) bool {
		if it.Items[i].Day != it.Items[j].Day {
			return it.Items[i].Day < it.Items[j].Day
		}
		return it.Items[i].Order < it.Items[j].Order
	})
}

// LocationIDs returns the set of location ids in the itinerary.
func (it *Itinerary) LocationIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(it.Items))
	for _, item := range it.Items {
		if item.Location != nil {
			ids[item.Location.ID] = struct{}{}
		}
	}
	return ids
}

// Item returns the item with the given id.
func (it *Itinerary) Item(id string) (*Item, bool) {
	for _, item := range it.Items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// DistanceKm returns the total distance of all transport legs.
func (it *Itinerary) DistanceKm() float64 {
	total := 0.0
	for _, item := range it.Items {
		if item.TransportToNext != nil {
			total += item.TransportToNext.DistanceKm
		}
	}
	return total
}

// WalkingKm returns the distance covered on foot.
func (it *Itinerary) WalkingKm() float64 {
	total := 0.0
	for _, item := range it.Items {
		if item.TransportToNext != nil && item.TransportToNext.Mode == transport.ModeWalk {
			total += item.TransportToNext.DistanceKm
		}
	}
	return total
}

// TransitMinutes returns the total time spent on transport legs.
func (it *Itinerary) TransitMinutes() int {
	total := 0
	for _, item := range it.Items {
		if item.TransportToNext != nil {
			total += item.TransportToNext.DurationMinutes
		}
	}
	return total
}
