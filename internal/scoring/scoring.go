// Package scoring computes itinerary match scores and cost estimates.
package scoring

import (
	"math"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// Config holds scorer weights, prices and tolerances.
type Config struct {
	// Component weights (defaults: affinity 0.6, budget 0.25, pace 0.15).
	AffinityWeight float64
	BudgetWeight   float64
	PaceWeight     float64

	// VisitCostVND is the estimated spend per visit by price tier 1..4
	// (defaults: 50k, 150k, 400k, 900k VND).
	VisitCostVND [4]int64

	// DailySpendVND is the expected daily spend per budget tier
	// (defaults: budget 300k, moderate 900k, luxury 2.5M VND).
	DailySpendVND map[itinerary.BudgetTier]int64

	// BudgetBand is the relative deviation that still counts as a full
	// budget fit (default: 0.2).
	BudgetBand float64

	// PaceBand is the items-per-day deviation that still counts as a full
	// pace fit (default: 1).
	PaceBand float64
}

// Scorer scores itineraries. It is pure and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a scorer, filling zero-valued fields with defaults.
func New(cfg Config) *Scorer {
	if cfg.AffinityWeight == 0 && cfg.BudgetWeight == 0 && cfg.PaceWeight == 0 {
		cfg.AffinityWeight, cfg.BudgetWeight, cfg.PaceWeight = 0.6, 0.25, 0.15
	}
	if cfg.VisitCostVND == [4]int64{} {
		cfg.VisitCostVND = [4]int64{50_000, 150_000, 400_000, 900_000}
	}
	if cfg.DailySpendVND == nil {
		cfg.DailySpendVND = map[itinerary.BudgetTier]int64{
			itinerary.BudgetLow:      300_000,
			itinerary.BudgetModerate: 900_000,
			itinerary.BudgetLuxury:   2_500_000,
		}
	}
	if cfg.BudgetBand == 0 {
		cfg.BudgetBand = 0.2
	}
	if cfg.PaceBand == 0 {
		cfg.PaceBand = 1
	}
	return &Scorer{cfg: cfg}
}

// Breakdown holds the score components, each in [0, 1].
type Breakdown struct {
	Affinity  float64 `json:"affinity"`
	BudgetFit float64 `json:"budgetFit"`
	PaceFit   float64 `json:"paceFit"`
	Score     int     `json:"score"`
}

// VisitCost returns the estimated spend for a visit of the given price tier.
func (s *Scorer) VisitCost(tier int) int64 {
	if tier < 1 {
		tier = 1
	}
	if tier > len(s.cfg.VisitCostVND) {
		tier = len(s.cfg.VisitCostVND)
	}
	return s.cfg.VisitCostVND[tier-1]
}

// ItemCost returns visit cost plus the onward leg cost of an item.
func (s *Scorer) ItemCost(item *itinerary.Item) int64 {
	cost := s.VisitCost(item.Location.PriceTier)
	if item.TransportToNext != nil {
		cost += item.TransportToNext.CostVND
	}
	return cost
}

// EstimateCost returns the total estimated spend of an itinerary in VND.
func (s *Scorer) EstimateCost(it *itinerary.Itinerary) int64 {
	var total int64
	for _, item := range it.Items {
		total += s.ItemCost(item)
	}
	return total
}

// ExpectedSpend returns the expected trip spend for the itinerary's budget.
func (s *Scorer) ExpectedSpend(it *itinerary.Itinerary) int64 {
	prefs := it.Spec.Preferences.WithDefaults()
	return s.cfg.DailySpendVND[prefs.Budget] * int64(it.Spec.DurationDays)
}

// Score returns the match score of an itinerary in [0, 100].
func (s *Scorer) Score(it *itinerary.Itinerary, prefs itinerary.Preferences) int {
	return s.Breakdown(it, prefs).Score
}

// Breakdown returns the score and its components.
func (s *Scorer) Breakdown(it *itinerary.Itinerary, prefs itinerary.Preferences) Breakdown {
	if len(it.Items) == 0 || it.Spec.DurationDays <= 0 {
		return Breakdown{}
	}
	prefs = prefs.WithDefaults()

	sum := 0.0
	for _, item := range it.Items {
		sum += candidate.Affinity(item.Location, prefs, candidate.DefaultWeights)
	}

	b := Breakdown{
		Affinity:  sum / float64(len(it.Items)),
		BudgetFit: s.budgetFit(s.EstimateCost(it), s.cfg.DailySpendVND[prefs.Budget]*int64(it.Spec.DurationDays)),
		PaceFit:   s.paceFit(float64(len(it.Items))/float64(it.Spec.DurationDays), float64(prefs.Pace.Capacity())),
	}

	total := s.cfg.AffinityWeight + s.cfg.BudgetWeight + s.cfg.PaceWeight
	raw := (s.cfg.AffinityWeight*b.Affinity + s.cfg.BudgetWeight*b.BudgetFit + s.cfg.PaceWeight*b.PaceFit) / total
	b.Score = int(math.Round(math.Max(0, math.Min(1, raw)) * 100))
	return b
}

// budgetFit is 1 within the band around the expected spend and decays
// linearly to 0 at a deviation of 100%.
func (s *Scorer) budgetFit(cost, expected int64) float64 {
	if expected <= 0 {
		return 1
	}
	dev := math.Abs(float64(cost-expected)) / float64(expected)
	if dev <= s.cfg.BudgetBand {
		return 1
	}
	return math.Max(0, 1-(dev-s.cfg.BudgetBand)/(1-s.cfg.BudgetBand))
}

// paceFit is 1 within PaceBand items per day of the target and decays
// linearly to 0 one target-width further out.
func (s *Scorer) paceFit(actual, target float64) float64 {
	diff := math.Abs(actual - target)
	if diff <= s.cfg.PaceBand {
		return 1
	}
	return math.Max(0, 1-(diff-s.cfg.PaceBand)/target)
}

// Annotate fills the derived stats of an itinerary.
func (s *Scorer) Annotate(it *itinerary.Itinerary) {
	prefs := it.Spec.Preferences
	it.Stats = itinerary.Stats{
		DurationDays:       it.Spec.DurationDays,
		LocationCount:      len(it.Items),
		EstimatedBudgetVND: s.EstimateCost(it),
		TotalDistanceKm:    math.Round(it.DistanceKm()*100) / 100,
		WalkingDistanceKm:  math.Round(it.WalkingKm()*100) / 100,
		MatchScore:         s.Score(it, prefs),
	}
}
