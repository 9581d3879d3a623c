// Package planner assembles ranked itinerary variants for a trip and exposes
// the generate and optimize operations to the API and worker.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scheduler"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/scoring"
)

// Variant names.
const (
	VariantTop       = "top"
	VariantAlternate = "alternate"
	VariantLocal     = "local"
)

// AssemblerConfig holds assembler configuration.
type AssemblerConfig struct {
	// Builder builds the candidate pool. Required.
	Builder *candidate.Builder

	// Scheduler fills days (default: scheduler.New).
	Scheduler *scheduler.Scheduler

	// Scorer scores variants (default: scoring.New).
	Scorer *scoring.Scorer

	// MaxResults caps the number of returned variants (default: 3).
	MaxResults int

	// MaxOverlap is the location overlap above which the lower-scored of two
	// variants is dropped (default: 0.7).
	MaxOverlap float64

	// Logger for debug output.
	Logger zerolog.Logger
}

// Assembler runs the scheduler with several anchor strategies over one pool
// and returns the best distinct results.
type Assembler struct {
	builder    *candidate.Builder
	sched      *scheduler.Scheduler
	scorer     *scoring.Scorer
	maxResults int
	maxOverlap float64
	logger     zerolog.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.New(scheduler.Config{Logger: cfg.Logger})
	}
	if cfg.Scorer == nil {
		cfg.Scorer = scoring.New(scoring.Config{})
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 3
	}
	if cfg.MaxOverlap == 0 {
		cfg.MaxOverlap = 0.7
	}
	return &Assembler{
		builder:    cfg.Builder,
		sched:      cfg.Scheduler,
		scorer:     cfg.Scorer,
		maxResults: cfg.MaxResults,
		maxOverlap: cfg.MaxOverlap,
		logger:     cfg.Logger,
	}
}

// Scorer returns the scorer used for ranking.
func (a *Assembler) Scorer() *scoring.Scorer {
	return a.scorer
}

// variant is one anchor strategy.
type variant struct {
	name string
	opts scheduler.Options
	pool func(*candidate.Pool) *candidate.Pool
}

func (a *Assembler) variants(prefs itinerary.Preferences) []variant {
	return []variant{
		{
			name: VariantTop,
			opts: scheduler.Options{Variant: VariantTop},
			pool: (*candidate.Pool).Clone,
		},
		{
			name: VariantAlternate,
			opts: scheduler.Options{Variant: VariantAlternate, AnchorRank: 1},
			pool: (*candidate.Pool).Clone,
		},
		{
			name: VariantLocal,
			opts: scheduler.Options{Variant: VariantLocal},
			pool: func(p *candidate.Pool) *candidate.Pool {
				return p.Reweight(prefs, candidate.LocalBiasWeights, true)
			},
		},
	}
}

// Generate validates the trip, builds the pool once and schedules each
// variant concurrently. An empty pool yields an empty result list.
func (a *Assembler) Generate(ctx context.Context, spec itinerary.TripSpec) ([]*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec.Preferences = spec.Preferences.WithDefaults()

	pool, err := a.builder.BuildPool(ctx, spec.City, spec.Preferences)
	if err != nil {
		return nil, fmt.Errorf("build candidate pool: %w", err)
	}
	if pool.Len() == 0 {
		a.logger.Debug().Str("city", spec.City).Msg("empty candidate pool")
		return []*Result{}, nil
	}

	variants := a.variants(spec.Preferences)
	built := make([]*itinerary.Itinerary, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it := a.sched.Schedule(v.pool(pool).Candidates, spec, v.opts)
			it.Diagnostics = append(append([]itinerary.Diagnostic(nil), pool.Diagnostics...), it.Diagnostics...)
			a.scorer.Annotate(it)
			built[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := a.rank(built)
	results := make([]*Result, 0, len(ranked))
	for _, it := range ranked {
		it.ID = "itn_" + uuid.NewString()
		it.Title = title(it)
		results = append(results, Present(it, a.scorer))
	}

	a.logger.Debug().
		Str("city", spec.City).
		Int("pool", pool.Len()).
		Int("variants", len(built)).
		Int("results", len(results)).
		Msg("itineraries assembled")

	return results, nil
}

// rank sorts variants by score, drops empty and near-duplicate ones, and
// caps the list. Ties keep the variant order.
func (a *Assembler) rank(built []*itinerary.Itinerary) []*itinerary.Itinerary {
	var out []*itinerary.Itinerary
	for _, it := range built {
		if it != nil && len(it.Items) > 0 {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stats.MatchScore > out[j].Stats.MatchScore
	})

	kept := out[:0]
	for _, it := range out {
		dup := false
		for _, k := range kept {
			if Overlap(it, k) > a.maxOverlap {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, it)
		}
		if len(kept) == a.maxResults {
			break
		}
	}
	return kept
}

// Overlap returns the share of shared locations relative to the smaller
// itinerary, in [0, 1].
func Overlap(a, b *itinerary.Itinerary) float64 {
	ia, ib := a.LocationIDs(), b.LocationIDs()
	smaller := min(len(ia), len(ib))
	if smaller == 0 {
		return 0
	}
	shared := 0
	for id := range ia {
		if _, ok := ib[id]; ok {
			shared++
		}
	}
	return float64(shared) / float64(smaller)
}
