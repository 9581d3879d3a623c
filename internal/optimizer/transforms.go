package optimizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/transport"
)

// ranked returns unused pool candidates accepted by keep, with affinity
// recomputed against the itinerary's preferences and sorted best first.
func (r *run) ranked(keep func(candidate.Candidate) bool) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, len(r.pool))
	for _, c := range r.pool {
		if c.Location == nil || r.used[c.Location.ID] || !keep(c) {
			continue
		}
		c.Affinity = r.affinity(c)
		out = append(out, c)
	}
	candidate.Rank(out)
	return out
}

// breaksRun reports whether appending category to items would create a run
// longer than n.
func breaksRun(items []*itinerary.Item, category string, n int) bool {
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

// diverse reports whether no run of equal categories in day exceeds n.
func diverse(day []*itinerary.Item, n int) bool {
	for i := range day {
		if breaksRun(day[:i], day[i].Location.Category, n) {
			return false
		}
	}
	return true
}

func (o *Optimizer) dayCost(day []*itinerary.Item) int64 {
	var total int64
	for _, item := range day {
		total += o.scorer.ItemCost(item)
	}
	return total
}

func dayPathKm(day []*itinerary.Item) float64 {
	points := make([]geo.Coordinate, len(day))
	for i, item := range day {
		points[i] = item.Location.Point
	}
	return geo.PathKm(points)
}

// route reorders each day by nearest neighbor from its first visit.
func (o *Optimizer) route(r *run) {
	maxRun := o.sched.Config().MaxConsecutiveCategory

	for d, day := range r.work.Days() {
		if len(day) < 3 {
			continue
		}

		order := nearestOrder(day, maxRun)
		if !diverse(order, maxRun) {
			continue
		}
		moved := false
		for i := range order {
			if order[i].ID != day[i].ID {
				moved = true
				break
			}
		}
		if !moved || dayPathKm(order) >= dayPathKm(day)-1e-9 {
			continue
		}

		retimed, ok := o.sched.Retime(order, r.work.Spec)
		if !ok {
			continue
		}

		was := make(map[string]int, len(day))
		for i, item := range day {
			was[item.ID] = i
		}
		for i, item := range retimed {
			if was[item.ID] == i {
				continue
			}
			r.changes = append(r.changes, Change{
				Type:        ChangeReorder,
				Day:         d + 1,
				ItemID:      item.ID,
				Description: fmt.Sprintf("Moved %s from stop %d to stop %d", item.Location.Name, was[item.ID]+1, i+1),
			})
		}
		r.work.SetDay(d+1, retimed)
	}
}

// nearestOrder keeps the first visit and greedily appends the closest
// remaining one, preferring visits that keep category runs short. Ties go to
// the smaller item id.
func nearestOrder(day []*itinerary.Item, maxRun int) []*itinerary.Item {
	out := []*itinerary.Item{day[0]}
	rest := append([]*itinerary.Item(nil), day[1:]...)

	for len(rest) > 0 {
		last := out[len(out)-1].Location.Point
		best, bestKm, bestDiverse := -1, 0.0, false
		for i, item := range rest {
			km := geo.HaversineKm(last, item.Location.Point)
			ok := !breaksRun(out, item.Location.Category, maxRun)
			switch {
			case best < 0,
				ok && !bestDiverse,
				ok == bestDiverse && km < bestKm,
				ok == bestDiverse && km == bestKm && item.ID < rest[best].ID:
				best, bestKm, bestDiverse = i, km, ok
			}
		}
		out = append(out, rest[best])
		rest = append(rest[:best], rest[best+1:]...)
	}
	return out
}

// weather swaps outdoor visits on rainy days for indoor ones.
func (o *Optimizer) weather(r *run) {
	maxRun := o.sched.Config().MaxConsecutiveCategory
	rainy := r.weather.RainyDays()
	if len(rainy) == 0 {
		return
	}

	for changed := true; changed; {
		changed = false
		for _, d := range rainy {
			if d < 1 || d > r.work.Spec.DurationDays {
				continue
			}
			day := r.work.Days()[d-1]
			for i, item := range day {
				if !item.Location.IsOutdoor() {
					continue
				}
				indoor := r.ranked(func(c candidate.Candidate) bool { return !c.Location.IsOutdoor() })
				if next, c, ok := o.replaceFirst(r, day, i, indoor, maxRun); ok {
					r.changes = append(r.changes, Change{
						Type:              ChangeReplace,
						Day:               d,
						ItemID:            item.ID,
						ReplacementItemID: itinerary.ItemID(c.Location.ID),
						Description:       fmt.Sprintf("Rain expected: replaced %s with %s", item.Location.Name, c.Location.Name),
					})
					r.swap(item.Location.ID, c.Location.ID)
					r.work.SetDay(d, next)
					changed = true
					break
				}
			}
		}
	}
}

// replaceFirst tries candidates in order and returns the first day in which
// the visit at index i could be swapped without breaking timing or diversity.
func (o *Optimizer) replaceFirst(r *run, day []*itinerary.Item, i int, cands []candidate.Candidate, maxRun int) ([]*itinerary.Item, candidate.Candidate, bool) {
	for _, c := range cands {
		next, ok := o.sched.Replace(day, i, c.Location.Clone(), c.Affinity, r.work.Spec)
		if !ok || !diverse(next, maxRun) {
			continue
		}
		return next, c, true
	}
	return nil, candidate.Candidate{}, false
}

// budget swaps the most expensive visits for cheaper nearby ones of the same
// category. A swap is kept only when it lowers the day's cost.
func (o *Optimizer) budget(r *run) {
	maxRun := o.sched.Config().MaxConsecutiveCategory

	targets := make([]*itinerary.Item, 0, len(r.work.Items))
	for _, item := range r.work.Items {
		if item.Location.PriceTier > 1 {
			targets = append(targets, item)
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		ci, cj := o.scorer.VisitCost(targets[i].Location.PriceTier), o.scorer.VisitCost(targets[j].Location.PriceTier)
		if ci != cj {
			return ci > cj
		}
		return targets[i].ID < targets[j].ID
	})
	if len(targets) > o.cfg.BudgetTopItems {
		targets = targets[:o.cfg.BudgetTopItems]
	}

	for _, target := range targets {
		loc := target.Location
		floor := candidate.Affinity(loc, r.prefs, candidate.DefaultWeights) - o.cfg.BudgetMaxAffinityLoss

		cheaper := r.ranked(func(c candidate.Candidate) bool {
			return strings.EqualFold(c.Location.Category, loc.Category) &&
				c.Location.PriceTier < loc.PriceTier &&
				geo.HaversineKm(loc.Point, c.Location.Point) <= o.cfg.BudgetRadiusKm
		})
		sort.SliceStable(cheaper, func(i, j int) bool {
			return cheaper[i].Location.PriceTier < cheaper[j].Location.PriceTier
		})

		days := r.work.Days()
		if target.Day < 1 || target.Day > len(days) {
			continue
		}
		day := days[target.Day-1]
		idx := indexOf(day, target.ID)
		if idx < 0 {
			continue
		}
		before := o.dayCost(day)

		for _, c := range cheaper {
			if c.Affinity < floor {
				continue
			}
			next, _, ok := o.replaceFirst(r, day, idx, []candidate.Candidate{c}, maxRun)
			if !ok || o.dayCost(next) >= before {
				continue
			}
			r.changes = append(r.changes, Change{
				Type:              ChangeReplace,
				Day:               target.Day,
				ItemID:            target.ID,
				ReplacementItemID: itinerary.ItemID(c.Location.ID),
				Description: fmt.Sprintf("Replaced %s with %s, saving about %d VND",
					loc.Name, c.Location.Name, before-o.dayCost(next)),
			})
			r.swap(loc.ID, c.Location.ID)
			r.work.SetDay(target.Day, next)
			break
		}
	}
}

func indexOf(day []*itinerary.Item, id string) int {
	for i, item := range day {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// walking switches long walks to bike rides. Visit times stay put; the
// shorter leg only adds slack before the next visit.
func (o *Optimizer) walking(r *run) {
	for _, item := range r.work.Items {
		leg := item.TransportToNext
		if leg == nil || leg.Mode != transport.ModeWalk || leg.DurationMinutes <= o.cfg.FatigueMinutes {
			continue
		}
		ride, err := o.calc.Reprice(*leg, transport.ModeGrabBike)
		if err != nil || ride.DurationMinutes >= leg.DurationMinutes {
			continue
		}
		r.changes = append(r.changes, Change{
			Type:   ChangeTiming,
			Day:    item.Day,
			ItemID: item.ID,
			Description: fmt.Sprintf("Ride a Grab bike after %s instead of walking %.1f km (%d min instead of %d)",
				item.Location.Name, leg.DistanceKm, ride.DurationMinutes, leg.DurationMinutes),
		})
		item.TransportToNext = &ride
	}
}

// views moves photogenic first and last visits into the dawn and dusk
// windows when opening hours and the neighbors allow it.
func (o *Optimizer) views(r *run) {
	spec := r.work.Spec
	dawnTarget := o.cfg.DawnStart.Add(o.cfg.DawnEnd.Sub(o.cfg.DawnStart) / 2)
	duskTarget := o.cfg.DuskStart.Add(30)

	for d, day := range r.work.Days() {
		if len(day) == 0 {
			continue
		}

		first := day[0]
		if first.Location.IsPhotogenic() && !o.inGoldenHour(first.Start) {
			weekday, known := spec.Weekday(d + 1)
			if open, _, ok := first.Location.Hours.Window(weekday, known); ok {
				start := max(dawnTarget, open)
				if start <= o.cfg.DawnEnd && o.shift(r, day, 0, start) {
					continue
				}
			}
		}

		last := day[len(day)-1]
		if len(day) > 1 && last.Location.IsPhotogenic() && !o.inGoldenHour(last.Start) {
			prev := day[len(day)-2]
			earliest := prev.End
			if prev.TransportToNext != nil {
				earliest = earliest.Add(prev.TransportToNext.DurationMinutes)
			}
			start := max(duskTarget, earliest)
			if start <= o.cfg.DuskEnd {
				o.shift(r, day, len(day)-1, start)
			}
		} else if len(day) == 1 && first.Location.IsPhotogenic() && !o.inGoldenHour(first.Start) {
			o.shift(r, day, 0, duskTarget)
		}
	}
}

func (o *Optimizer) inGoldenHour(c geo.Clock) bool {
	return (c >= o.cfg.DawnStart && c <= o.cfg.DawnEnd) || (c >= o.cfg.DuskStart && c <= o.cfg.DuskEnd)
}

// shift moves the visit at index i of day to start, keeping its neighbors.
func (o *Optimizer) shift(r *run, day []*itinerary.Item, i int, start geo.Clock) bool {
	item := day[i]
	end, ok := o.sched.FitsAt(item.Location, r.work.Spec, item.Day, start)
	if !ok {
		return false
	}
	if i > 0 {
		prev := day[i-1]
		earliest := prev.End
		if prev.TransportToNext != nil {
			earliest = earliest.Add(prev.TransportToNext.DurationMinutes)
		}
		if start < earliest {
			return false
		}
	}
	if i < len(day)-1 && item.TransportToNext != nil && end.Add(item.TransportToNext.DurationMinutes) > day[i+1].Start {
		return false
	}

	r.changes = append(r.changes, Change{
		Type:        ChangeTiming,
		Day:         item.Day,
		ItemID:      item.ID,
		Description: fmt.Sprintf("Visit %s at %s for golden-hour light (was %s)", item.Location.Name, start, item.Start),
	})
	item.Start, item.End = start, end
	return true
}

// maximize appends one optional visit to each day that has room for it.
func (o *Optimizer) maximize(r *run) {
	capacity := r.prefs.Pace.Capacity()
	penalty := o.sched.Config().RainPenalty

	for d, day := range r.work.Days() {
		if len(day) == 0 || len(day) > capacity {
			continue
		}
		hasOptional := false
		for _, item := range day {
			hasOptional = hasOptional || item.IsOptional
		}
		if hasOptional {
			continue
		}

		cands := r.ranked(func(candidate.Candidate) bool { return true })
		if r.weather.IsRainy(d + 1) {
			for i := range cands {
				if cands[i].Location.IsOutdoor() {
					cands[i].Affinity -= penalty
				}
			}
			candidate.Rank(cands)
		}

		for _, c := range cands {
			next, ok := o.sched.Append(day, c.Location.Clone(), r.affinity(c), r.work.Spec)
			if !ok {
				continue
			}
			added := next[len(next)-1]
			added.IsOptional = true
			r.changes = append(r.changes, Change{
				Type:        ChangeAdd,
				Day:         d + 1,
				ItemID:      added.ID,
				Description: fmt.Sprintf("Added optional stop %s at %s", c.Location.Name, added.Start),
			})
			r.used[c.Location.ID] = true
			r.work.SetDay(d+1, next)
			break
		}
	}
}

// local swaps unverified visits for nearby local picks of the same category.
// An unverified hidden gem only gives way to a verified location.
func (o *Optimizer) local(r *run) {
	maxRun := o.sched.Config().MaxConsecutiveCategory

	for changed := true; changed; {
		changed = false
		for d, day := range r.work.Days() {
			for i, item := range day {
				loc := item.Location
				if loc.Verified {
					continue
				}
				floor := candidate.Affinity(loc, r.prefs, candidate.DefaultWeights) - o.cfg.LocalMaxAffinityLoss
				picks := r.ranked(func(c candidate.Candidate) bool {
					better := c.Location.Verified || (c.Location.HiddenGem && !loc.HiddenGem)
					return better &&
						strings.EqualFold(c.Location.Category, loc.Category) &&
						geo.HaversineKm(loc.Point, c.Location.Point) <= o.cfg.LocalRadiusKm
				})
				eligible := picks[:0]
				for _, c := range picks {
					if c.Affinity >= floor {
						eligible = append(eligible, c)
					}
				}

				next, c, ok := o.replaceFirst(r, day, i, eligible, maxRun)
				if !ok {
					continue
				}
				r.changes = append(r.changes, Change{
					Type:              ChangeReplace,
					Day:               d + 1,
					ItemID:            item.ID,
					ReplacementItemID: itinerary.ItemID(c.Location.ID),
					Description:       fmt.Sprintf("Replaced %s with local favorite %s", loc.Name, c.Location.Name),
				})
				r.swap(loc.ID, c.Location.ID)
				r.work.SetDay(d+1, next)
				changed = true
				break
			}
		}
	}
}
