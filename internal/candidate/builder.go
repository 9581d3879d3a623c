// Package candidate builds ranked candidate pools from the location catalog.
package candidate

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// Candidate is a catalog location with its affinity for a trip.
type Candidate struct {
	Location *catalog.Location
	Affinity float64
}

// Pool is a ranked candidate list for one trip. Locations are shared
// read-only; Clone copies the ranking so variants can work independently.
type Pool struct {
	City        string
	Candidates  []Candidate
	Diagnostics []itinerary.Diagnostic
}

// Len returns the number of candidates.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Candidates)
}

// Clone returns a copy of the pool with its own candidate slice.
func (p *Pool) Clone() *Pool {
	return &Pool{
		City:        p.City,
		Candidates:  append([]Candidate(nil), p.Candidates...),
		Diagnostics: append([]itinerary.Diagnostic(nil), p.Diagnostics...),
	}
}

// Lookup returns the candidate for a location id.
func (p *Pool) Lookup(id string) (Candidate, bool) {
	for _, c := range p.Candidates {
		if c.Location.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// Reweight returns a copy of the pool re-scored with the given weights. When
// local is true, flag scores use the hidden-gem signal regardless of the
// traveler's interests.
func (p *Pool) Reweight(prefs itinerary.Preferences, w Weights, local bool) *Pool {
	prefs = prefs.WithDefaults()
	terms := InterestTerms(prefs)
	local = local || HasLocalSignal(prefs)

	out := p.Clone()
	for i := range out.Candidates {
		out.Candidates[i].Affinity = affinity(out.Candidates[i].Location, terms, prefs.DislikedVibes, local, w)
	}
	Rank(out.Candidates)
	return out
}

// Rank sorts candidates by affinity descending, then rating, then id.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Affinity != b.Affinity {
			return a.Affinity > b.Affinity
		}
		if a.Location.Rating != b.Location.Rating {
			return a.Location.Rating > b.Location.Rating
		}
		return a.Location.ID < b.Location.ID
	})
}

// AllowedTier reports whether a price tier suits a budget tier. Tier 1 is
// always allowed as a floor.
func AllowedTier(budget itinerary.BudgetTier, tier int) bool {
	if tier == 1 {
		return true
	}
	switch budget {
	case itinerary.BudgetLow:
		return tier == 2
	case itinerary.BudgetLuxury:
		return tier >= 2 && tier <= 4
	default:
		return tier == 2 || tier == 3
	}
}

// Config holds builder configuration.
type Config struct {
	// Weights are the affinity weights (default: DefaultWeights).
	Weights Weights

	// MinPool is the interest-filtered size below which the filter is
	// relaxed (default: 12).
	MinPool int

	// PoolCap bounds the pool size (default: 200).
	PoolCap int

	// Logger for debug output.
	Logger zerolog.Logger
}

// Builder filters and ranks catalog locations against trip preferences.
type Builder struct {
	catalog catalog.Repository
	cfg     Config
	logger  zerolog.Logger
}

// NewBuilder creates a candidate pool builder.
func NewBuilder(repo catalog.Repository, cfg Config) *Builder {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights
	}
	if cfg.MinPool == 0 {
		cfg.MinPool = 12
	}
	if cfg.PoolCap == 0 {
		cfg.PoolCap = 200
	}
	return &Builder{
		catalog: repo,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// BuildPool returns the ranked candidate pool for a city. An unknown city or
// a city without matching locations yields an empty pool and no error.
func (b *Builder) BuildPool(ctx context.Context, city string, prefs itinerary.Preferences) (*Pool, error) {
	prefs = prefs.WithDefaults()
	pool := &Pool{City: city}

	locations, err := b.catalog.ListByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("list catalog for %s: %w", city, err)
	}

	terms := InterestTerms(prefs)
	local := HasLocalSignal(prefs)

	var matched, others []Candidate
	var invalid []string
	for _, loc := range locations {
		if !loc.Schedulable() {
			invalid = append(invalid, loc.ID)
			continue
		}
		if !AllowedTier(prefs.Budget, loc.PriceTier) {
			continue
		}
		c := Candidate{
			Location: loc,
			Affinity: affinity(loc, terms, prefs.DislikedVibes, local, b.cfg.Weights),
		}
		if len(terms) == 0 || overlaps(loc, terms) {
			matched = append(matched, c)
		} else {
			others = append(others, c)
		}
	}

	if len(invalid) > 0 {
		b.logger.Warn().Str("city", city).Strs("location_ids", invalid).Msg("skipping unschedulable catalog rows")
		pool.Diagnostics = append(pool.Diagnostics, itinerary.Diagnostic{
			Code:    itinerary.DiagInvalidLocation,
			Message: fmt.Sprintf("%d catalog locations were skipped for a missing duration or price tier", len(invalid)),
		})
	}

	pool.Candidates = matched
	if len(terms) > 0 && len(matched) < b.cfg.MinPool && len(others) > 0 {
		pool.Candidates = append(pool.Candidates, others...)
		pool.Diagnostics = append(pool.Diagnostics, itinerary.Diagnostic{
			Code: itinerary.DiagPoolRelaxed,
			Message: fmt.Sprintf("only %d locations match the requested interests; %d others were added",
				len(matched), len(others)),
		})
	}

	if len(pool.Candidates) == 0 {
		pool.Diagnostics = append(pool.Diagnostics, itinerary.Diagnostic{
			Code:    itinerary.DiagEmptyPool,
			Message: fmt.Sprintf("no locations available for %q", city),
		})
	}

	Rank(pool.Candidates)
	if len(pool.Candidates) > b.cfg.PoolCap {
		pool.Candidates = pool.Candidates[:b.cfg.PoolCap]
	}

	b.logger.Debug().
		Str("city", city).
		Int("catalog", len(locations)).
		Int("matched", len(matched)).
		Int("pool", len(pool.Candidates)).
		Msg("candidate pool built")

	return pool, nil
}

func overlaps(loc *catalog.Location, terms map[string]struct{}) bool {
	for token := range loc.Tokens() {
		if _, ok := terms[token]; ok {
			return true
		}
	}
	return false
}
