package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response, written with
// Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation       = "https://api.anvago.vn/problems/validation-error"
	ProblemTypeUnauthorized     = "https://api.anvago.vn/problems/unauthorized"
	ProblemTypeNotFound         = "https://api.anvago.vn/problems/not-found"
	ProblemTypeConflict         = "https://api.anvago.vn/problems/conflict"
	ProblemTypeUnsupportedMedia = "https://api.anvago.vn/problems/unsupported-media-type"
	ProblemTypeTooManyRequests  = "https://api.anvago.vn/problems/too-many-requests"
	ProblemTypeInternal         = "https://api.anvago.vn/problems/internal-error"
	ProblemTypeUnavailable      = "https://api.anvago.vn/problems/service-unavailable"
)

// NewProblem creates a Problem; the detail, instance and field errors are
// added with the With* builders.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

type problemKind struct {
	typ    string
	title  string
	status int
}

var (
	kindBadRequest   = problemKind{ProblemTypeValidation, "Validation error", http.StatusBadRequest}
	kindUnauthorized = problemKind{ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized}
	kindNotFound     = problemKind{ProblemTypeNotFound, "Not found", http.StatusNotFound}
	kindConflict     = problemKind{ProblemTypeConflict, "Conflict", http.StatusConflict}
	kindUnsupported  = problemKind{ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType}
	kindRateLimited  = problemKind{ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests}
	kindInternal     = problemKind{ProblemTypeInternal, "Internal server error", http.StatusInternalServerError}
	kindUnavailable  = problemKind{ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable}
)

func (k problemKind) new(traceID, detail string) *Problem {
	return NewProblem(k.typ, k.title, k.status, traceID).WithDetail(detail)
}

// NewBadRequest creates a 400 problem carrying field errors.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return kindBadRequest.new(traceID, detail).WithErrors(errors)
}

// NewUnauthorized creates a 401 problem.
func NewUnauthorized(traceID, detail string) *Problem { return kindUnauthorized.new(traceID, detail) }

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem { return kindNotFound.new(traceID, detail) }

// NewConflict creates a 409 problem, returned for concurrent optimizations
// and stale itinerary versions.
func NewConflict(traceID, detail string) *Problem { return kindConflict.new(traceID, detail) }

// NewUnsupportedMediaType creates a 415 problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return kindUnsupported.new(traceID, detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem { return kindRateLimited.new(traceID, detail) }

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem { return kindInternal.new(traceID, detail) }

// NewServiceUnavailable creates a 503 problem, returned when the job queue
// rejects an asynchronous optimization.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return kindUnavailable.new(traceID, detail)
}
