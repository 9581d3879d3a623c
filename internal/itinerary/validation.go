package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

// ValidationError represents validation errors. Err optionally carries a
// sentinel for errors.Is checks.
type ValidationError struct {
	Errors []models.FieldError
	Err    error
}

// Unwrap returns the underlying sentinel, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []models.FieldError{{Field: field, Message: message}}}
}

// Validate checks the trip request before any scheduling work starts.
func (s TripSpec) Validate() error {
	var errs []models.FieldError

	if strings.TrimSpace(s.City) == "" {
		errs = append(errs, models.FieldError{Field: "city", Message: "is required", Code: "REQUIRED"})
	}

	if s.DurationDays <= 0 {
		errs = append(errs, models.FieldError{Field: "durationDays", Message: "must be at least 1", Code: "OUT_OF_RANGE"})
	} else if s.DurationDays > MaxDurationDays {
		errs = append(errs, models.FieldError{
			Field:   "durationDays",
			Message: fmt.Sprintf("must be at most %d", MaxDurationDays),
			Code:    "OUT_OF_RANGE",
		})
	}

	if s.StartDate != "" {
		if _, err := time.Parse(DateLayout, s.StartDate); err != nil {
			errs = append(errs, models.FieldError{Field: "startDate", Message: "must be in YYYY-MM-DD format", Code: "INVALID_FORMAT"})
		}
	}

	prefs := s.Preferences.WithDefaults()
	if !prefs.Pace.Valid() {
		errs = append(errs, models.FieldError{Field: "preferences.pace", Message: "must be one of chill, balanced, packed", Code: "INVALID_ENUM"})
	}
	if !prefs.Budget.Valid() {
		errs = append(errs, models.FieldError{Field: "preferences.budget", Message: "must be one of budget, moderate, luxury", Code: "INVALID_ENUM"})
	}

	if s.Weather != nil {
		for i, d := range s.Weather.Days {
			field := fmt.Sprintf("weather.days[%d]", i)
			if d.Day < 1 || (s.DurationDays > 0 && d.Day > s.DurationDays) {
				errs = append(errs, models.FieldError{Field: field + ".day", Message: "must be within the trip duration", Code: "OUT_OF_RANGE"})
			}
			if d.RainChance < 0 || d.RainChance > 1 {
				errs = append(errs, models.FieldError{Field: field + ".rainChance", Message: "must be between 0 and 1", Code: "OUT_OF_RANGE"})
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Validate checks the scheduling invariants: day numbers within the trip,
// contiguous per-day orders, no overlapping visits, no repeated location and
// per-day counts within the pace capacity plus one optional visit.
func (it *Itinerary) Validate() error {
	capacity := it.Spec.Preferences.WithDefaults().Pace.Capacity() + 1
	seen := make(map[string]bool, len(it.Items))

	for _, item := range it.Items {
		if item.Location == nil {
			return fmt.Errorf("%w: item %s has no location", ErrInvalidItinerary, item.ID)
		}
		if item.Day < 1 || item.Day > it.Spec.DurationDays {
			return fmt.Errorf("%w: item %s on day %d outside 1..%d", ErrInvalidItinerary, item.ID, item.Day, it.Spec.DurationDays)
		}
		if seen[item.Location.ID] {
			return fmt.Errorf("%w: location %s appears more than once", ErrInvalidItinerary, item.Location.ID)
		}
		seen[item.Location.ID] = true
	}

	for i, day := range it.Days() {
		if len(day) > capacity {
			return fmt.Errorf("%w: day %d has %d items, capacity %d", ErrInvalidItinerary, i+1, len(day), capacity)
		}
		for j, item := range day {
			if item.Order != j {
				return fmt.Errorf("%w: day %d order %d where %d expected", ErrInvalidItinerary, i+1, item.Order, j)
			}
			if item.End <= item.Start || item.End > geo.MinutesPerDay {
				return fmt.Errorf("%w: item %s has invalid times %s-%s", ErrInvalidItinerary, item.ID, item.Start, item.End)
			}
			if j == 0 {
				continue
			}
			prev := day[j-1]
			earliest := prev.End
			if prev.TransportToNext != nil {
				earliest = earliest.Add(prev.TransportToNext.DurationMinutes)
			}
			if item.Start < earliest {
				return fmt.Errorf("%w: item %s starts at %s before %s", ErrInvalidItinerary, item.ID, item.Start, earliest)
			}
		}
	}

	return nil
}
