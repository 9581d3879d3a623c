package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/response"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
)

// List page size limits.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// maxBodyBytes bounds request bodies. Trip specs with inline weather stay
// well below this.
const maxBodyBytes = 1 << 20

// ItineraryService is the planner surface the handler needs.
type ItineraryService interface {
	Generate(ctx context.Context, rc planner.RequestContext, spec itinerary.TripSpec) ([]*planner.Result, error)
	List(ctx context.Context, rc planner.RequestContext, opts itinerary.ListOptions) (*planner.Page, error)
	Get(ctx context.Context, rc planner.RequestContext, id string) (*planner.Result, error)
	Optimize(ctx context.Context, rc planner.RequestContext, id string, req planner.OptimizeRequest) (*optimizer.Result, error)
}

// OptimizeQueue hands optimizations to the background worker.
type OptimizeQueue interface {
	EnqueueOptimize(ctx context.Context, userID, itineraryID string, req planner.OptimizeRequest) (string, error)
}

// GenerateResponse wraps generated itineraries.
type GenerateResponse struct {
	Results []*planner.Result `json:"results"`
}

// ListResponse is one page of the caller's itineraries.
type ListResponse struct {
	Items []*planner.Result        `json:"items"`
	Meta  models.PagedResponseMeta `json:"meta"`
}

// OptimizeRequest is the body of an optimize call. Async hands the work to
// the worker queue instead of running it inline.
type OptimizeRequest struct {
	Criterion string `json:"criterion"`
	Apply     bool   `json:"apply"`
	Async     bool   `json:"async,omitempty"`
}

// OptimizeAccepted acknowledges a queued optimization.
type OptimizeAccepted struct {
	JobID       string `json:"jobId"`
	ItineraryID string `json:"itineraryId"`
	Status      string `json:"status"`
}

// ItineraryHandler handles itinerary endpoints.
type ItineraryHandler struct {
	service ItineraryService
	queue   OptimizeQueue
	logger  zerolog.Logger
}

// NewItineraryHandler creates an itinerary handler. queue may be nil, in
// which case async optimize requests run inline.
func NewItineraryHandler(service ItineraryService, queue OptimizeQueue, logger zerolog.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		service: service,
		queue:   queue,
		logger:  logger,
	}
}

// Generate handles POST /v1/itineraries:generate.
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var spec itinerary.TripSpec
	if !decode(w, r, &spec) {
		return
	}

	results, err := h.service.Generate(r.Context(), requestContext(r, h.logger), spec)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if results == nil {
		results = []*planner.Result{}
	}
	response.JSON(w, r, http.StatusOK, GenerateResponse{Results: results})
}

// List handles GET /v1/itineraries.
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			response.BadRequest(w, r, "invalid limit", []models.FieldError{{
				Field:   "limit",
				Message: "must be an integer between 1 and 100",
				Code:    "OUT_OF_RANGE",
			}})
			return
		}
		limit = n
	}
	cursor := r.URL.Query().Get("cursor")

	page, err := h.service.List(r.Context(), requestContext(r, h.logger), itinerary.ListOptions{
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	meta := models.PagedResponseMeta{Limit: limit}
	if page.NextCursor != "" {
		next := page.NextCursor
		meta.NextCursor = &next
	}
	response.JSON(w, r, http.StatusOK, ListResponse{Items: page.Items, Meta: meta})
}

// Get handles GET /v1/itineraries/{itineraryId}.
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itineraryId")

	res, err := h.service.Get(r.Context(), requestContext(r, h.logger), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

// Optimize handles POST /v1/itineraries/{itineraryId}/optimize.
func (h *ItineraryHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itineraryId")

	var body OptimizeRequest
	if !decode(w, r, &body) {
		return
	}
	req := planner.OptimizeRequest{Criterion: body.Criterion, Apply: body.Apply}
	rc := requestContext(r, h.logger)

	if body.Async && h.queue != nil {
		h.enqueue(w, r, rc, id, req)
		return
	}

	res, err := h.service.Optimize(r.Context(), rc, id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

// enqueue checks the criterion and ownership up front so the caller gets
// 400 and 404 synchronously, then queues the work.
func (h *ItineraryHandler) enqueue(w http.ResponseWriter, r *http.Request, rc planner.RequestContext, id string, req planner.OptimizeRequest) {
	if _, err := optimizer.ParseCriterion(req.Criterion); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.service.Get(r.Context(), rc, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	jobID, err := h.queue.EnqueueOptimize(r.Context(), rc.UserID, id, req)
	if err != nil {
		rc.Logger.Error().Err(err).Str("itinerary_id", id).Msg("failed to queue optimization")
		response.ServiceUnavailable(w, r, "optimization queue unavailable, retry without async")
		return
	}

	response.Accepted(w, r, "/v1/itineraries/"+id, OptimizeAccepted{
		JobID:       jobID,
		ItineraryID: id,
		Status:      "queued",
	})
}

// decode reads a JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}
