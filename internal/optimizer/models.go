// Package optimizer revises existing itineraries against a chosen criterion
// and explains the result as a list of changes.
package optimizer

import (
	"errors"
	"strings"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// Optimizer errors.
var (
	ErrUnknownCriterion       = errors.New("unknown optimization criterion")
	ErrOptimizationInProgress = errors.New("optimization already in progress for this itinerary")
)

// Criterion selects the optimization strategy.
type Criterion string

const (
	CriterionRoute    Criterion = "route"
	CriterionWeather  Criterion = "weather"
	CriterionBudget   Criterion = "budget"
	CriterionWalking  Criterion = "walking"
	CriterionViews    Criterion = "views"
	CriterionMaximize Criterion = "maximize"
	CriterionLocal    Criterion = "local"
)

// Criteria lists all supported criteria.
var Criteria = []Criterion{
	CriterionRoute,
	CriterionWeather,
	CriterionBudget,
	CriterionWalking,
	CriterionViews,
	CriterionMaximize,
	CriterionLocal,
}

// ParseCriterion parses a criterion name. Unknown names yield a validation
// error wrapping ErrUnknownCriterion.
func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Criteria {
		if c == known {
			return c, nil
		}
	}
	return "", &itinerary.ValidationError{
		Errors: []models.FieldError{{
			Field:   "criterion",
			Message: "must be one of route, weather, budget, walking, views, maximize, local",
			Code:    "INVALID_ENUM",
		}},
		Err: ErrUnknownCriterion,
	}
}

// invalidItinerary wraps a failed itinerary check as a validation error.
func invalidItinerary(err error) error {
	return &itinerary.ValidationError{
		Errors: []models.FieldError{{
			Field:   "itinerary",
			Message: err.Error(),
			Code:    "INVALID_ITINERARY",
		}},
		Err: err,
	}
}

// ChangeType classifies a diff entry.
type ChangeType string

const (
	ChangeReorder ChangeType = "reorder"
	ChangeReplace ChangeType = "replace"
	ChangeAdd     ChangeType = "add"
	ChangeRemove  ChangeType = "remove"
	ChangeTiming  ChangeType = "timing"
)

// Change is one discrete difference between an itinerary and its revision.
type Change struct {
	Type              ChangeType `json:"type"`
	Description       string     `json:"description"`
	Day               int        `json:"day"`
	ItemID            string     `json:"itemId"`
	ReplacementItemID string     `json:"replacementItemId,omitempty"`
}

// Improvements quantify an optimization.
type Improvements struct {
	ScoreBefore      int     `json:"scoreBefore"`
	ScoreAfter       int     `json:"scoreAfter"`
	DistanceSavedKm  float64 `json:"distanceSavedKm"`
	TimeSavedMinutes int     `json:"timeSavedMinutes"`
	MoneySavedVND    int64   `json:"moneySavedVnd"`
	ItemsAdded       int     `json:"itemsAdded"`
	ItemsReplaced    int     `json:"itemsReplaced"`
	Summary          string  `json:"summary"`
}

// Result is the outcome of an optimization. Optimized equals Original and
// Changes is empty when no improvement was found.
type Result struct {
	Criterion    Criterion              `json:"criterion"`
	Original     *itinerary.Itinerary   `json:"original"`
	Optimized    *itinerary.Itinerary   `json:"optimized"`
	Changes      []Change               `json:"changes"`
	Improvements Improvements           `json:"improvements"`
	Diagnostics  []itinerary.Diagnostic `json:"diagnostics,omitempty"`
}

// Changed reports whether the optimization produced any change.
func (r *Result) Changed() bool {
	return len(r.Changes) > 0
}
