// Package scheduler assigns ranked candidates to days and time slots.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// Config holds scheduler configuration.
type Config struct {
	// DayStart is when the first visit of each day starts (default: 08:00).
	DayStart geo.Clock

	// Cutoff is the latest time a visit may end (default: 23:00).
	Cutoff geo.Clock

	// DayBudgetMinutes caps visit plus transit minutes per day (default: 720).
	DayBudgetMinutes int

	// MaxWaitMinutes is how long a traveler may wait for a venue to open
	// (default: 30).
	MaxWaitMinutes int

	// MaxAnchorDelay is how far after DayStart an anchor may open (default: 120).
	MaxAnchorDelay int

	// CandidateWindow is how many of the best remaining candidates the
	// nearest-neighbor step considers (default: 8).
	CandidateWindow int

	// MaxConsecutiveCategory limits runs of the same category (default: 2).
	MaxConsecutiveCategory int

	// RainPenalty is subtracted from an outdoor candidate's affinity on rainy
	// days (default: 0.3).
	RainPenalty float64

	// RainDistancePenaltyKm is added to an outdoor candidate's distance on
	// rainy days (default: 3).
	RainDistancePenaltyKm float64

	// Transport prices legs (default: transport.NewCalculator with defaults).
	Transport *transport.Calculator

	// Logger for debug output.
	Logger zerolog.Logger
}

// Options perturb a single scheduling run.
type Options struct {
	// AnchorRank selects the n-th best feasible anchor for each day.
	AnchorRank int

	// Variant labels the produced itinerary.
	Variant string
}

// Scheduler builds day-by-day itineraries with a greedy nearest-neighbor
// heuristic. It holds no mutable state and is safe for concurrent use.
type Scheduler struct {
	cfg    Config
	calc   *transport.Calculator
	logger zerolog.Logger
}

// New creates a scheduler, filling zero-valued fields with defaults.
func New(cfg Config) *Scheduler {
	if cfg.DayStart == 0 {
		cfg.DayStart = geo.At(8, 0)
	}
	if cfg.Cutoff == 0 {
		cfg.Cutoff = geo.At(23, 0)
	}
	if cfg.DayBudgetMinutes == 0 {
		cfg.DayBudgetMinutes = 12 * 60
	}
	if cfg.MaxWaitMinutes == 0 {
		cfg.MaxWaitMinutes = 30
	}
	if cfg.MaxAnchorDelay == 0 {
		cfg.MaxAnchorDelay = 120
	}
	if cfg.CandidateWindow == 0 {
		cfg.CandidateWindow = 8
	}
	if cfg.MaxConsecutiveCategory == 0 {
		cfg.MaxConsecutiveCategory = 2
	}
	if cfg.RainPenalty == 0 {
		cfg.RainPenalty = 0.3
	}
	if cfg.RainDistancePenaltyKm == 0 {
		cfg.RainDistancePenaltyKm = 3
	}
	if cfg.Transport == nil {
		cfg.Transport = transport.NewCalculator(transport.Config{})
	}
	return &Scheduler{
		cfg:    cfg,
		calc:   cfg.Transport,
		logger: cfg.Logger,
	}
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Transport returns the leg calculator used by the scheduler.
func (s *Scheduler) Transport() *transport.Calculator {
	return s.calc
}

// dayPlan tracks the state of the day being filled.
type dayPlan struct {
	day     int
	weekday time.Weekday
	known   bool
	rainy   bool
	items   []*itinerary.Item
	active  int
	skipped map[string]bool
	base    map[string]float64
}

func (d *dayPlan) last() *itinerary.Item {
	if len(d.items) == 0 {
		return nil
	}
	return d.items[len(d.items)-1]
}

// rejection explains why a candidate cannot be placed next.
type rejection int

const (
	accepted rejection = iota
	rejectHours
	rejectCutoff
	rejectBudget
	rejectDiversity
)

// placement is a feasible next visit.
type placement struct {
	cand  candidate.Candidate
	leg   *transport.Leg
	start geo.Clock
	end   geo.Clock
	cost  int
}

// Schedule builds an itinerary from a ranked pool. The pool is not modified.
// Infeasible days end early and are reported as diagnostics, never errors.
func (s *Scheduler) Schedule(pool []candidate.Candidate, spec itinerary.TripSpec, opts Options) *itinerary.Itinerary {
	prefs := spec.Preferences.WithDefaults()
	spec.Preferences = prefs
	capacity := prefs.Pace.Capacity()

	it := &itinerary.Itinerary{
		Spec:    spec,
		Variant: opts.Variant,
	}

	base := make(map[string]float64, len(pool))
	for _, c := range pool {
		base[c.Location.ID] = c.Affinity
	}

	used := make(map[string]bool)
	for day := 1; day <= spec.DurationDays; day++ {
		weekday, known := spec.Weekday(day)
		plan := &dayPlan{
			day:     day,
			weekday: weekday,
			known:   known,
			rainy:   spec.Weather.IsRainy(day),
			skipped: make(map[string]bool),
			base:    base,
		}

		ranked := s.rank(pool, used, plan.rainy)
		if plan.rainy {
			it.Diagnostics = append(it.Diagnostics, itinerary.Diagnostic{
				Code:    itinerary.DiagRainPenalty,
				Day:     day,
				Message: "rain expected; outdoor locations deprioritized",
			})
		}

		if anchor, ok := s.pickAnchor(ranked, plan, opts.AnchorRank); ok {
			s.place(plan, anchor, used)
			for len(plan.items) < capacity {
				next, reason := s.pickNext(ranked, plan, used, it)
				if reason != "" {
					it.Diagnostics = append(it.Diagnostics, itinerary.Diagnostic{
						Code:    reason,
						Day:     day,
						Message: fmt.Sprintf("day %d stopped after %d of %d visits", day, len(plan.items), capacity),
					})
					break
				}
				s.place(plan, next, used)
			}
		} else {
			it.Diagnostics = append(it.Diagnostics, itinerary.Diagnostic{
				Code:    itinerary.DiagPoolExhausted,
				Day:     day,
				Message: fmt.Sprintf("no location could anchor day %d", day),
			})
		}

		if len(plan.items) < capacity {
			it.Diagnostics = append(it.Diagnostics, itinerary.Diagnostic{
				Code:    itinerary.DiagShortDay,
				Day:     day,
				Message: fmt.Sprintf("day %d has %d visits, target %d", day, len(plan.items), capacity),
			})
		}

		it.Items = append(it.Items, plan.items...)
	}

	s.logger.Debug().
		Str("variant", opts.Variant).
		Int("days", spec.DurationDays).
		Int("items", len(it.Items)).
		Int("diagnostics", len(it.Diagnostics)).
		Msg("itinerary scheduled")

	return it
}

// rank returns unused candidates ordered by weather-adjusted affinity.
func (s *Scheduler) rank(pool []candidate.Candidate, used map[string]bool, rainy bool) []candidate.Candidate {
	ranked := make([]candidate.Candidate, 0, len(pool))
	for _, c := range pool {
		if used[c.Location.ID] {
			continue
		}
		c.Affinity = s.adjusted(c, rainy)
		ranked = append(ranked, c)
	}
	candidate.Rank(ranked)
	return ranked
}

func (s *Scheduler) adjusted(c candidate.Candidate, rainy bool) float64 {
	if rainy && c.Location.IsOutdoor() {
		return c.Affinity - s.cfg.RainPenalty
	}
	return c.Affinity
}

// pickAnchor chooses the rank-th best candidate that opens close enough to
// the start of the day. A rank beyond the feasible set falls back to the
// last feasible anchor.
func (s *Scheduler) pickAnchor(ranked []candidate.Candidate, plan *dayPlan, rank int) (placement, bool) {
	var feasible []placement
	for _, c := range ranked {
		open, close, ok := c.Location.Hours.Window(plan.weekday, plan.known)
		if !ok {
			continue
		}
		start := max(s.cfg.DayStart, open)
		if start.Sub(s.cfg.DayStart) > s.cfg.MaxAnchorDelay {
			continue
		}
		end := start.Add(c.Location.AvgDurationMins)
		if end > close || end > s.cfg.Cutoff || c.Location.AvgDurationMins > s.cfg.DayBudgetMinutes {
			continue
		}
		feasible = append(feasible, placement{cand: c, start: start, end: end, cost: c.Location.AvgDurationMins})
		if len(feasible) > rank {
			break
		}
	}
	if len(feasible) == 0 {
		return placement{}, false
	}
	return feasible[min(rank, len(feasible)-1)], true
}

// pickNext chooses the nearest feasible candidate among the best-ranked
// remaining ones. It returns a diagnostic code when the day must stop.
func (s *Scheduler) pickNext(ranked []candidate.Candidate, plan *dayPlan, used map[string]bool, it *itinerary.Itinerary) (placement, string) {
	var (
		window    []placement
		reasons   = make(map[rejection]int)
		remaining int
	)

	for _, c := range ranked {
		if used[c.Location.ID] {
			continue
		}
		remaining++
		p, why := s.tryAppend(plan, c)
		if why != accepted {
			reasons[why]++
			if why == rejectHours && len(window) < s.cfg.CandidateWindow && !plan.skipped[c.Location.ID] {
				plan.skipped[c.Location.ID] = true
				it.Diagnostics = append(it.Diagnostics, itinerary.Diagnostic{
					Code:       itinerary.DiagOpeningHours,
					Day:        plan.day,
					LocationID: c.Location.ID,
					Message:    fmt.Sprintf("%s is closed at the projected arrival time", c.Location.Name),
				})
			}
			continue
		}
		window = append(window, p)
		if len(window) == s.cfg.CandidateWindow {
			break
		}
	}

	if remaining == 0 {
		return placement{}, itinerary.DiagPoolExhausted
	}
	if len(window) == 0 {
		if reasons[rejectBudget] == remaining {
			return placement{}, itinerary.DiagDayBudget
		}
		return placement{}, itinerary.DiagNoFeasible
	}

	last := plan.last().Location
	best, bestKm := 0, 0.0
	for i, p := range window {
		km := geo.HaversineKm(last.Point, p.cand.Location.Point)
		if plan.rainy && p.cand.Location.IsOutdoor() {
			km += s.cfg.RainDistancePenaltyKm
		}
		if i == 0 || km < bestKm {
			best, bestKm = i, km
		}
	}
	return window[best], ""
}

// tryAppend checks whether a candidate can follow the last placed item.
func (s *Scheduler) tryAppend(plan *dayPlan, c candidate.Candidate) (placement, rejection) {
	last := plan.last()
	loc := c.Location

	if s.breaksDiversity(plan.items, loc.Category) {
		return placement{}, rejectDiversity
	}

	leg := s.calc.Leg(last.Location.Point, loc.Point)
	start, end, why := s.fit(loc, plan.weekday, plan.known, last.End.Add(leg.DurationMinutes))
	if why != accepted {
		return placement{}, why
	}

	cost := leg.DurationMinutes + loc.AvgDurationMins
	if plan.active+cost > s.cfg.DayBudgetMinutes {
		return placement{}, rejectBudget
	}

	return placement{cand: c, leg: &leg, start: start, end: end, cost: cost}, accepted
}

// fit returns the visit window for a location reached at arrival, waiting up
// to MaxWaitMinutes for it to open.
func (s *Scheduler) fit(loc *catalog.Location, weekday time.Weekday, known bool, arrival geo.Clock) (geo.Clock, geo.Clock, rejection) {
	open, close, ok := loc.Hours.Window(weekday, known)
	if !ok {
		return 0, 0, rejectHours
	}
	start := max(arrival, open)
	if start.Sub(arrival) > s.cfg.MaxWaitMinutes {
		return 0, 0, rejectHours
	}
	end := start.Add(loc.AvgDurationMins)
	if end > close {
		return 0, 0, rejectHours
	}
	if end > s.cfg.Cutoff {
		return 0, 0, rejectCutoff
	}
	return start, end, accepted
}

func (s *Scheduler) breaksDiversity(items []*itinerary.Item, category string) bool {
	n := s.cfg.MaxConsecutiveCategory
	if len(items) < n {
		return false
	}
	for _, item := range items[len(items)-n:] {
		if !strings.EqualFold(item.Location.Category, category) {
			return false
		}
	}
	return true
}

func (s *Scheduler) place(plan *dayPlan, p placement, used map[string]bool) {
	if last := plan.last(); last != nil {
		last.TransportToNext = p.leg
	}
	plan.items = append(plan.items, &itinerary.Item{
		ID:       itinerary.ItemID(p.cand.Location.ID),
		Location: p.cand.Location,
		Day:      plan.day,
		Order:    len(plan.items),
		Start:    p.start,
		End:      p.end,
		Affinity: plan.base[p.cand.Location.ID],
	})
	plan.active += p.cost
	used[p.cand.Location.ID] = true
}
