package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/middleware"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
)

// requestContext builds the planner context for an authenticated request.
func requestContext(r *http.Request, logger zerolog.Logger) planner.RequestContext {
	userID := middleware.GetUserID(r.Context())
	scoped := logger.With().
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("user_id", userID).
		Logger()
	return planner.NewRequestContext(userID, scoped)
}
