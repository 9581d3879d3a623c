package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/response"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
)

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var verr *itinerary.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, r, "request validation failed", verr.Errors)
	case errors.Is(err, itinerary.ErrItineraryNotFound):
		response.NotFound(w, r, "itinerary not found")
	case errors.Is(err, optimizer.ErrOptimizationInProgress):
		response.Conflict(w, r, "an optimization is already running for this itinerary")
	case errors.Is(err, itinerary.ErrVersionConflict):
		response.Conflict(w, r, "itinerary was modified concurrently, retry the request")
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
