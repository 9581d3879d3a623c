// Package catalog provides read access to the location catalog that the
// itinerary engine draws candidates from.
package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

// Catalog errors.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUnknownCity      = errors.New("unknown city")
)

// Location is an immutable catalog entry.
type Location struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	City            string         `json:"city"`
	Point           geo.Coordinate `json:"point"`
	Category        string         `json:"category"`
	Tags            []string       `json:"tags"`
	PriceTier       int            `json:"priceTier"`
	Rating          float64        `json:"rating"`
	AvgDurationMins int            `json:"avgDurationMins"`
	Hours           OpeningHours   `json:"hours"`
	Verified        bool           `json:"verified"`
	Popular         bool           `json:"popular"`
	HiddenGem       bool           `json:"hiddenGem"`
}

// Categories lists the location categories the catalog uses.
var Categories = []string{
	"activity", "attraction", "beach", "cafe", "culture", "landmark", "market",
	"museum", "nature", "nightlife", "park", "restaurant", "shopping",
	"viewpoint", "wellness",
}

// outdoorCategories are weather-exposed categories.
var outdoorCategories = map[string]bool{
	"beach":     true,
	"nature":    true,
	"park":      true,
	"viewpoint": true,
}

// outdoorTags mark a venue as weather-exposed regardless of category.
var outdoorTags = map[string]bool{
	"hiking":  true,
	"outdoor": true,
	"trek":    true,
}

// photogenicTags mark a venue worth visiting in golden-hour light.
var photogenicTags = map[string]bool{
	"photogenic": true,
	"viewpoint":  true,
	"sunset":     true,
	"sunrise":    true,
}

// IsOutdoor reports whether the location is exposed to the weather.
func (l *Location) IsOutdoor() bool {
	if outdoorCategories[strings.ToLower(l.Category)] {
		return true
	}
	for _, t := range l.Tags {
		if outdoorTags[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

// IsPhotogenic reports whether the location is tagged for photography.
func (l *Location) IsPhotogenic() bool {
	if strings.EqualFold(l.Category, "viewpoint") {
		return true
	}
	for _, t := range l.Tags {
		if photogenicTags[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

// IsLocalPick reports whether the location is verified or a hidden gem.
func (l *Location) IsLocalPick() bool {
	return l.Verified || l.HiddenGem
}

// Schedulable reports whether the location has a positive visit duration and
// a price tier in 1..4.
func (l *Location) Schedulable() bool {
	return l.AvgDurationMins > 0 && l.PriceTier >= 1 && l.PriceTier <= 4
}

// Tokens returns the lowercase category and tags of the location.
func (l *Location) Tokens() map[string]struct{} {
	tokens := make(map[string]struct{}, len(l.Tags)+1)
	if l.Category != "" {
		tokens[strings.ToLower(l.Category)] = struct{}{}
	}
	for _, t := range l.Tags {
		tokens[strings.ToLower(t)] = struct{}{}
	}
	return tokens
}

// Clone returns a deep copy of the location.
func (l *Location) Clone() *Location {
	cpy := *l
	cpy.Tags = append([]string(nil), l.Tags...)
	return &cpy
}

// DayHours holds the opening window for one weekday.
type DayHours struct {
	Open   geo.Clock `json:"open"`
	Close  geo.Clock `json:"close"`
	Closed bool      `json:"closed,omitempty"`
}

// OpeningHours holds opening windows indexed by time.Weekday (Sunday = 0).
type OpeningHours [7]DayHours

// Daily returns hours with the same window every day.
func Daily(open, close geo.Clock) OpeningHours {
	var h OpeningHours
	for i := range h {
		h[i] = DayHours{Open: open, Close: close}
	}
	return h
}

// AlwaysOpen returns hours open around the clock.
func AlwaysOpen() OpeningHours {
	return Daily(geo.At(0, 0), geo.At(24, 0))
}

// ClosedOn returns a copy of the hours with the given weekdays closed.
func (h OpeningHours) ClosedOn(days ...time.Weekday) OpeningHours {
	for _, d := range days {
		h[d] = DayHours{Closed: true}
	}
	return h
}

// Window returns the opening window for a weekday. When the weekday is not
// known, the widest window across all open days is returned.
func (h OpeningHours) Window(day time.Weekday, known bool) (open, close geo.Clock, ok bool) {
	if known {
		d := h[day]
		if d.Closed || d.Close <= d.Open {
			return 0, 0, false
		}
		return d.Open, d.Close, true
	}

	for _, d := range h {
		if d.Closed || d.Close <= d.Open {
			continue
		}
		if !ok || d.Open < open {
			open = d.Open
		}
		if !ok || d.Close > close {
			close = d.Close
		}
		ok = true
	}
	return open, close, ok
}

// Fits reports whether a visit of the given length starting at start lies
// inside the opening window.
func (h OpeningHours) Fits(day time.Weekday, known bool, start geo.Clock, durationMins int) bool {
	open, close, ok := h.Window(day, known)
	if !ok {
		return false
	}
	return start >= open && start.Add(durationMins) <= close
}

// City is a destination served by the catalog.
type City struct {
	Key    string
	Name   string
	Center geo.Coordinate
}

// cities lists the destinations the catalog is seeded for.
var cities = map[string]City{
	"danang":    {Key: "danang", Name: "Da Nang", Center: geo.Coordinate{Lat: 16.0544, Lon: 108.2022}},
	"hoian":     {Key: "hoian", Name: "Hoi An", Center: geo.Coordinate{Lat: 15.8801, Lon: 108.3380}},
	"hue":       {Key: "hue", Name: "Hue", Center: geo.Coordinate{Lat: 16.4637, Lon: 107.5909}},
	"hanoi":     {Key: "hanoi", Name: "Hanoi", Center: geo.Coordinate{Lat: 21.0285, Lon: 105.8542}},
	"hochiminh": {Key: "hochiminh", Name: "Ho Chi Minh City", Center: geo.Coordinate{Lat: 10.7769, Lon: 106.7009}},
}

// CityKey normalizes a city name for lookups ("Da Nang", "danang" and
// "DA-NANG" share a key).
func CityKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '-' || r == '_' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	key := b.String()
	if key == "hochiminhcity" || key == "saigon" {
		return "hochiminh"
	}
	return key
}

// LookupCity returns the city registered under the given name.
func LookupCity(name string) (City, error) {
	c, ok := cities[CityKey(name)]
	if !ok {
		return City{}, ErrUnknownCity
	}
	return c, nil
}

// Cities returns all known cities.
func Cities() []City {
	out := make([]City, 0, len(cities))
	for _, key := range []string{"danang", "hoian", "hue", "hanoi", "hochiminh"} {
		out = append(out, cities[key])
	}
	return out
}
