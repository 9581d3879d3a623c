package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scoring"
	"github.com/suka712/anvago-travel-planning-v2-sub001/pkg/polyline"
)

// Badges.
const (
	BadgeGreatMatch     = "great_match"
	BadgeBudgetFriendly = "budget_friendly"
	BadgeLocalFavorites = "local_favorites"
	BadgeRainReady      = "rain_ready"
	BadgeWalkable       = "walkable"
)

// MaxHighlights is the number of highlighted stops per result.
const MaxHighlights = 3

// Result is an itinerary with its presentation summary.
type Result struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Tagline     string                 `json:"tagline"`
	Variant     string                 `json:"variant"`
	MatchScore  int                    `json:"matchScore"`
	Highlights  []string               `json:"highlights"`
	Stats       Summary                `json:"stats"`
	DayPreviews []DayPreview           `json:"dayPreviews"`
	Badges      []string               `json:"badges"`
	Diagnostics []itinerary.Diagnostic `json:"diagnostics,omitempty"`
	Itinerary   *itinerary.Itinerary   `json:"itinerary"`
}

// Summary is the per-stat summary shown on a result card.
type Summary struct {
	DurationDays       int     `json:"durationDays"`
	LocationCount      int     `json:"locationCount"`
	WalkingDistanceKm  float64 `json:"walkingDistanceKm"`
	EstimatedBudgetVND int64   `json:"estimatedBudgetVnd"`
}

// DayPreview summarizes one day.
type DayPreview struct {
	Day      int              `json:"day"`
	Theme    string           `json:"theme"`
	Stops    []string         `json:"stops"`
	Polyline string           `json:"polyline,omitempty"`
	Bounds   *polyline.Bounds `json:"bounds,omitempty"`
	Rainy    bool             `json:"rainy,omitempty"`
}

// Present builds the presentation summary of a scored itinerary.
func Present(it *itinerary.Itinerary, scorer *scoring.Scorer) *Result {
	if it.Title == "" {
		it.Title = title(it)
	}
	return &Result{
		ID:         it.ID,
		Title:      it.Title,
		Tagline:    tagline(it),
		Variant:    it.Variant,
		MatchScore: it.Stats.MatchScore,
		Highlights: highlights(it),
		Stats: Summary{
			DurationDays:       it.Stats.DurationDays,
			LocationCount:      it.Stats.LocationCount,
			WalkingDistanceKm:  it.Stats.WalkingDistanceKm,
			EstimatedBudgetVND: it.Stats.EstimatedBudgetVND,
		},
		DayPreviews: dayPreviews(it),
		Badges:      badges(it, scorer),
		Diagnostics: it.Diagnostics,
		Itinerary:   it,
	}
}

func cityName(it *itinerary.Itinerary) string {
	if city, err := catalog.LookupCity(it.Spec.City); err == nil {
		return city.Name
	}
	return it.Spec.City
}

func title(it *itinerary.Itinerary) string {
	city := cityName(it)
	switch it.Variant {
	case VariantAlternate:
		return fmt.Sprintf("%s Beyond the Classics", city)
	case VariantLocal:
		return fmt.Sprintf("%s Like a Local", city)
	default:
		return fmt.Sprintf("Best of %s", city)
	}
}

func tagline(it *itinerary.Itinerary) string {
	prefs := it.Spec.Preferences.WithDefaults()
	days := "days"
	if it.Spec.DurationDays == 1 {
		days = "day"
	}
	return fmt.Sprintf("%d %s %s %s in %s on a %s budget",
		it.Spec.DurationDays, prefs.Pace, days, paceVerb(prefs.Pace), cityName(it), budgetWord(prefs.Budget))
}

func paceVerb(p itinerary.Pace) string {
	switch p {
	case itinerary.PaceChill:
		return "unwinding"
	case itinerary.PacePacked:
		return "exploring everything"
	default:
		return "exploring"
	}
}

func budgetWord(b itinerary.BudgetTier) string {
	if b == itinerary.BudgetLow {
		return "tight"
	}
	return string(b)
}

// highlights names the best-matching stops, best first.
func highlights(it *itinerary.Itinerary) []string {
	items := append([]*itinerary.Item(nil), it.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Affinity != items[j].Affinity {
			return items[i].Affinity > items[j].Affinity
		}
		return items[i].Location.Rating > items[j].Location.Rating
	})
	out := make([]string, 0, MaxHighlights)
	for _, item := range items {
		if len(out) == MaxHighlights {
			break
		}
		out = append(out, item.Location.Name)
	}
	return out
}

func dayPreviews(it *itinerary.Itinerary) []DayPreview {
	days := it.Days()
	out := make([]DayPreview, 0, len(days))
	for i, day := range days {
		p := DayPreview{
			Day:   i + 1,
			Theme: theme(day),
			Stops: make([]string, 0, len(day)),
			Rainy: it.Spec.Weather.IsRainy(i + 1),
		}
		var path polyline.Builder
		for _, item := range day {
			p.Stops = append(p.Stops, item.Location.Name)
			path.Add(item.Location.Point.Lat, item.Location.Point.Lon)
		}
		p.Polyline = path.String()
		if b, ok := path.Bounds(); ok {
			p.Bounds = &b
		}
		out = append(out, p)
	}
	return out
}

// theme names a day after its most frequent category. Ties go to the
// category visited first.
func theme(day []*itinerary.Item) string {
	if len(day) == 0 {
		return "Free day"
	}
	counts := make(map[string]int)
	best := ""
	for _, item := range day {
		c := strings.ToLower(item.Location.Category)
		counts[c]++
		if best == "" || counts[c] > counts[best] {
			best = c
		}
	}
	if best == "" {
		return "Mixed day"
	}
	return strings.ToUpper(best[:1]) + best[1:] + " day"
}

func badges(it *itinerary.Itinerary, scorer *scoring.Scorer) []string {
	out := []string{}
	if len(it.Items) == 0 {
		return out
	}

	if it.Stats.MatchScore >= 80 {
		out = append(out, BadgeGreatMatch)
	}
	if scorer.EstimateCost(it) <= scorer.ExpectedSpend(it) {
		out = append(out, BadgeBudgetFriendly)
	}

	local := 0
	for _, item := range it.Items {
		if item.Location.IsLocalPick() {
			local++
		}
	}
	if local*2 >= len(it.Items) {
		out = append(out, BadgeLocalFavorites)
	}

	if rainy := it.Spec.Weather.RainyDays(); len(rainy) > 0 {
		ready := true
		for _, d := range rainy {
			for _, item := range it.Items {
				if item.Day == d && item.Location.IsOutdoor() {
					ready = false
				}
			}
		}
		if ready {
			out = append(out, BadgeRainReady)
		}
	}

	if total := it.DistanceKm(); total > 0 && it.WalkingKm()*2 >= total {
		out = append(out, BadgeWalkable)
	}
	return out
}
