package scheduler

import (
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/candidate"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// The helpers below re-check an existing day against the same rules the
// greedy fill uses. They never modify their input; accepted changes are
// returned as fresh item copies.

// ActiveMinutes returns visit plus transit minutes of a day.
func ActiveMinutes(day []*itinerary.Item) int {
	total := 0
	for _, item := range day {
		total += item.End.Sub(item.Start)
		if item.TransportToNext != nil {
			total += item.TransportToNext.DurationMinutes
		}
	}
	return total
}

func cloneDay(day []*itinerary.Item) []*itinerary.Item {
	out := make([]*itinerary.Item, len(day))
	for i, item := range day {
		out[i] = item.Clone()
	}
	return out
}

// FitsAt reports whether a visit to loc may start exactly at start on the
// given trip day, and returns its end.
func (s *Scheduler) FitsAt(loc *catalog.Location, spec itinerary.TripSpec, day int, start geo.Clock) (geo.Clock, bool) {
	weekday, known := spec.Weekday(day)
	open, close, ok := loc.Hours.Window(weekday, known)
	if !ok || start < open {
		return 0, false
	}
	end := start.Add(loc.AvgDurationMins)
	if end > close || end > s.cfg.Cutoff {
		return 0, false
	}
	return end, true
}

// Retime recomputes legs and times of a day in its current order, keeping the
// first visit's start. It returns false when a visit no longer fits.
func (s *Scheduler) Retime(day []*itinerary.Item, spec itinerary.TripSpec) ([]*itinerary.Item, bool) {
	if len(day) == 0 {
		return nil, true
	}

	out := cloneDay(day)
	weekday, known := spec.Weekday(out[0].Day)

	first := out[0]
	end, ok := s.FitsAt(first.Location, spec, first.Day, first.Start)
	if !ok {
		return nil, false
	}
	first.End = end

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		leg := s.calc.Leg(prev.Location.Point, cur.Location.Point)
		prev.TransportToNext = &leg

		start, end, why := s.fit(cur.Location, weekday, known, prev.End.Add(leg.DurationMinutes))
		if why != accepted {
			return nil, false
		}
		cur.Start, cur.End = start, end
		cur.Order = i
	}
	out[len(out)-1].TransportToNext = nil

	if ActiveMinutes(out) > s.cfg.DayBudgetMinutes {
		return nil, false
	}
	return out, true
}

// Replace swaps the visit at index i for loc while keeping its start time.
// The neighbors' timing must still hold with the new transport legs.
func (s *Scheduler) Replace(day []*itinerary.Item, i int, loc *catalog.Location, affinity float64, spec itinerary.TripSpec) ([]*itinerary.Item, bool) {
	if i < 0 || i >= len(day) {
		return nil, false
	}

	out := cloneDay(day)
	old := out[i]

	end, ok := s.FitsAt(loc, spec, old.Day, old.Start)
	if !ok {
		return nil, false
	}

	repl := &itinerary.Item{
		ID:         itinerary.ItemID(loc.ID),
		Location:   loc,
		Day:        old.Day,
		Order:      old.Order,
		Start:      old.Start,
		End:        end,
		IsOptional: old.IsOptional,
		Affinity:   affinity,
	}

	if i > 0 {
		prev := out[i-1]
		leg := s.calc.Leg(prev.Location.Point, loc.Point)
		if prev.End.Add(leg.DurationMinutes) > repl.Start {
			return nil, false
		}
		prev.TransportToNext = &leg
	}
	if i < len(out)-1 {
		next := out[i+1]
		leg := s.calc.Leg(loc.Point, next.Location.Point)
		if repl.End.Add(leg.DurationMinutes) > next.Start {
			return nil, false
		}
		repl.TransportToNext = &leg
	}

	out[i] = repl
	if ActiveMinutes(out) > s.cfg.DayBudgetMinutes {
		return nil, false
	}
	return out, true
}

// Append adds loc after the last visit of a non-empty day, subject to opening
// hours, category diversity, the cutoff and the day budget.
func (s *Scheduler) Append(day []*itinerary.Item, loc *catalog.Location, affinity float64, spec itinerary.TripSpec) ([]*itinerary.Item, bool) {
	if len(day) == 0 {
		return nil, false
	}

	out := cloneDay(day)
	last := out[len(out)-1]
	weekday, known := spec.Weekday(last.Day)

	plan := &dayPlan{
		day:     last.Day,
		weekday: weekday,
		known:   known,
		items:   out,
		active:  ActiveMinutes(out),
	}

	p, why := s.tryAppend(plan, candidate.Candidate{Location: loc, Affinity: affinity})
	if why != accepted {
		return nil, false
	}

	last.TransportToNext = p.leg
	return append(out, &itinerary.Item{
		ID:       itinerary.ItemID(loc.ID),
		Location: loc,
		Day:      last.Day,
		Order:    len(out),
		Start:    p.start,
		End:      p.end,
		Affinity: affinity,
	}), true
}
