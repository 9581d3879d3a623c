package planner

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// RequestContext carries per-call state into the service: the caller, a
// request-scoped logger, an optional pre-resolved weather snapshot and the
// clock used for timestamps.
type RequestContext struct {
	UserID  string
	Logger  zerolog.Logger
	Weather *itinerary.WeatherContext
	Now     time.Time
}

// NewRequestContext creates a request context stamped with the current time.
func NewRequestContext(userID string, logger zerolog.Logger) RequestContext {
	return RequestContext{
		UserID: userID,
		Logger: logger,
		Now:    time.Now().UTC(),
	}
}

func (rc RequestContext) now() time.Time {
	if rc.Now.IsZero() {
		return time.Now().UTC()
	}
	return rc.Now
}
