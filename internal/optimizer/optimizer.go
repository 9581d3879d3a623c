package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scheduler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scoring"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// Config holds optimizer configuration.
type Config struct {
	// Scheduler re-checks timing after a transform (default: scheduler.New).
	Scheduler *scheduler.Scheduler

	// Scorer computes scores and costs (default: scoring.New).
	Scorer *scoring.Scorer

	// Gate serializes optimizations per itinerary (default: NewGate).
	Gate *Gate

	// FatigueMinutes is the walking leg length that triggers a mode switch
	// (default: 25).
	FatigueMinutes int

	// BudgetTopItems is how many of the most expensive visits are considered
	// for cheaper swaps (default: 3).
	BudgetTopItems int

	// BudgetRadiusKm bounds how far a cheaper alternative may be (default: 2).
	BudgetRadiusKm float64

	// BudgetMaxAffinityLoss bounds the affinity given up for a cheaper swap
	// (default: 0.1).
	BudgetMaxAffinityLoss float64

	// LocalRadiusKm bounds how far a local alternative may be (default: 3).
	LocalRadiusKm float64

	// LocalMaxAffinityLoss bounds the affinity given up for a local pick
	// (default: 0.15).
	LocalMaxAffinityLoss float64

	// Golden-hour windows (defaults: 05:00-07:00 and 16:30-18:30).
	DawnStart, DawnEnd geo.Clock
	DuskStart, DuskEnd geo.Clock

	// Logger for debug output.
	Logger zerolog.Logger
}

// Optimizer applies criterion-specific transforms to itineraries. Transforms
// work on copies; the input itinerary is never modified.
type Optimizer struct {
	cfg    Config
	sched  *scheduler.Scheduler
	scorer *scoring.Scorer
	calc   *transport.Calculator
	gate   *Gate
	logger zerolog.Logger
}

// New creates an optimizer, filling zero-valued fields with defaults.
func New(cfg Config) *Optimizer {
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.New(scheduler.Config{Logger: cfg.Logger})
	}
	if cfg.Scorer == nil {
		cfg.Scorer = scoring.New(scoring.Config{})
	}
	if cfg.Gate == nil {
		cfg.Gate = NewGate()
	}
	if cfg.FatigueMinutes == 0 {
		cfg.FatigueMinutes = 25
	}
	if cfg.BudgetTopItems == 0 {
		cfg.BudgetTopItems = 3
	}
	if cfg.BudgetRadiusKm == 0 {
		cfg.BudgetRadiusKm = 2
	}
	if cfg.BudgetMaxAffinityLoss == 0 {
		cfg.BudgetMaxAffinityLoss = 0.1
	}
	if cfg.LocalRadiusKm == 0 {
		cfg.LocalRadiusKm = 3
	}
	if cfg.LocalMaxAffinityLoss == 0 {
		cfg.LocalMaxAffinityLoss = 0.15
	}
	if cfg.DawnStart == 0 && cfg.DawnEnd == 0 {
		cfg.DawnStart, cfg.DawnEnd = geo.At(5, 0), geo.At(7, 0)
	}
	if cfg.DuskStart == 0 && cfg.DuskEnd == 0 {
		cfg.DuskStart, cfg.DuskEnd = geo.At(16, 30), geo.At(18, 30)
	}
	return &Optimizer{
		cfg:    cfg,
		sched:  cfg.Scheduler,
		scorer: cfg.Scorer,
		calc:   cfg.Scheduler.Transport(),
		gate:   cfg.Gate,
		logger: cfg.Logger,
	}
}

// Gate returns the per-itinerary execution gate.
func (o *Optimizer) Gate() *Gate {
	return o.gate
}

// run carries the state of one optimization.
type run struct {
	work    *itinerary.Itinerary
	prefs   itinerary.Preferences
	weather *itinerary.WeatherContext
	pool    []candidate.Candidate
	used    map[string]bool
	changes []Change
	diags   []itinerary.Diagnostic
}

func (r *run) affinity(c candidate.Candidate) float64 {
	return candidate.Affinity(c.Location, r.prefs, candidate.DefaultWeights)
}

func (r *run) swap(oldID, newID string) {
	delete(r.used, oldID)
	r.used[newID] = true
}

// Optimize revises an itinerary for a criterion while holding the gate for
// its id. The weather snapshot may be nil, in which case the itinerary's own
// snapshot (if any) is used. When no valid change exists the result carries
// the original itinerary and an empty change list.
func (o *Optimizer) Optimize(ctx context.Context, it *itinerary.Itinerary, criterion Criterion, pool []candidate.Candidate, weather *itinerary.WeatherContext) (*Result, error) {
	c, err := ParseCriterion(string(criterion))
	if err != nil {
		return nil, err
	}

	if it.ID != "" {
		release, err := o.gate.Acquire(it.ID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	return o.Revise(ctx, it, c, pool, weather)
}

// Revise is Optimize without the gate. Callers that load and store the
// itinerary around the optimization hold the gate for the whole sequence.
// An itinerary that breaks the scheduling rules is rejected with a
// validation error before any transform runs.
func (o *Optimizer) Revise(ctx context.Context, it *itinerary.Itinerary, criterion Criterion, pool []candidate.Candidate, weather *itinerary.WeatherContext) (*Result, error) {
	c, err := ParseCriterion(string(criterion))
	if err != nil {
		return nil, err
	}
	if err := it.Validate(); err != nil {
		return nil, invalidItinerary(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if weather == nil {
		weather = it.Spec.Weather
	}
	r := &run{
		work:    it.Clone(),
		prefs:   it.Spec.Preferences.WithDefaults(),
		weather: weather,
		pool:    pool,
		used:    make(map[string]bool),
	}
	for id := range it.LocationIDs() {
		r.used[id] = true
	}

	switch c {
	case CriterionRoute:
		o.route(r)
	case CriterionWeather:
		o.weather(r)
	case CriterionBudget:
		o.budget(r)
	case CriterionWalking:
		o.walking(r)
	case CriterionViews:
		o.views(r)
	case CriterionMaximize:
		o.maximize(r)
	case CriterionLocal:
		o.local(r)
	}

	if len(r.changes) > 0 {
		r.work.Sort()
		err := r.work.Validate()
		if err == nil {
			err = o.checkDiversity(it, r.work)
		}
		if err != nil {
			o.logger.Warn().Err(err).Str("itinerary_id", it.ID).Str("criterion", string(c)).Msg("discarding invalid transform")
			r.changes = nil
			r.diags = append(r.diags, itinerary.Diagnostic{
				Code:    itinerary.DiagInvalidTransform,
				Message: "the revised itinerary broke a scheduling rule and was discarded",
			})
		}
	}

	return o.result(it, c, r), nil
}

// checkDiversity rejects a revision that leaves a day with a longer category
// run than the scheduler allows, unless that day already had one.
func (o *Optimizer) checkDiversity(orig, revised *itinerary.Itinerary) error {
	maxRun := o.sched.Config().MaxConsecutiveCategory
	before := orig.Days()
	for d, day := range revised.Days() {
		if diverse(day, maxRun) || (d < len(before) && !diverse(before[d], maxRun)) {
			continue
		}
		return fmt.Errorf("%w: day %d has more than %d consecutive visits of one category",
			itinerary.ErrInvalidItinerary, d+1, maxRun)
	}
	return nil
}

func (o *Optimizer) result(orig *itinerary.Itinerary, c Criterion, r *run) *Result {
	before := o.scorer.Score(orig, r.prefs)

	if len(r.changes) == 0 {
		optimized := orig.Clone()
		o.scorer.Annotate(optimized)
		r.diags = append(r.diags, itinerary.Diagnostic{
			Code:    itinerary.DiagNoImprovement,
			Message: fmt.Sprintf("no %s improvement found", c),
		})
		return &Result{
			Criterion: c,
			Original:  orig,
			Optimized: optimized,
			Changes:   []Change{},
			Improvements: Improvements{
				ScoreBefore: before,
				ScoreAfter:  before,
				Summary:     "No improvement found; the itinerary is unchanged.",
			},
			Diagnostics: r.diags,
		}
	}

	opt := r.work
	o.scorer.Annotate(opt)

	imp := Improvements{
		ScoreBefore:      before,
		ScoreAfter:       opt.Stats.MatchScore,
		DistanceSavedKm:  math.Round((orig.DistanceKm()-opt.DistanceKm())*100) / 100,
		TimeSavedMinutes: orig.TransitMinutes() - opt.TransitMinutes(),
		MoneySavedVND:    o.scorer.EstimateCost(orig) - opt.Stats.EstimatedBudgetVND,
	}
	for _, ch := range r.changes {
		switch ch.Type {
		case ChangeAdd:
			imp.ItemsAdded++
		case ChangeReplace:
			imp.ItemsReplaced++
		}
	}
	imp.Summary = summarize(c, len(r.changes), imp)

	o.logger.Debug().
		Str("itinerary_id", orig.ID).
		Str("criterion", string(c)).
		Int("changes", len(r.changes)).
		Int("score_before", imp.ScoreBefore).
		Int("score_after", imp.ScoreAfter).
		Msg("itinerary optimized")

	return &Result{
		Criterion:    c,
		Original:     orig,
		Optimized:    opt,
		Changes:      r.changes,
		Improvements: imp,
		Diagnostics:  r.diags,
	}
}

func summarize(c Criterion, n int, imp Improvements) string {
	switch c {
	case CriterionRoute:
		return fmt.Sprintf("Reordered %d stops, saving %.1f km of travel.", n, imp.DistanceSavedKm)
	case CriterionWeather:
		return fmt.Sprintf("Moved %d outdoor stops indoors on rainy days.", imp.ItemsReplaced)
	case CriterionBudget:
		return fmt.Sprintf("Swapped %d stops for cheaper options, saving %d VND.", imp.ItemsReplaced, imp.MoneySavedVND)
	case CriterionWalking:
		return fmt.Sprintf("Replaced %d long walks with rides, saving %d minutes.", n, imp.TimeSavedMinutes)
	case CriterionViews:
		return fmt.Sprintf("Moved %d scenic stops into golden hour.", n)
	case CriterionMaximize:
		return fmt.Sprintf("Added %d optional stops.", imp.ItemsAdded)
	case CriterionLocal:
		return fmt.Sprintf("Swapped %d stops for local favorites.", imp.ItemsReplaced)
	default:
		return fmt.Sprintf("%d changes.", n)
	}
}
