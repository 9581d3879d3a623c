package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", itinerary.NewValidationError("city", "is required"), http.StatusBadRequest, models.ProblemTypeValidation},
		{"not found", fmt.Errorf("load: %w", itinerary.ErrItineraryNotFound), http.StatusNotFound, models.ProblemTypeNotFound},
		{"in progress", optimizer.ErrOptimizationInProgress, http.StatusConflict, models.ProblemTypeConflict},
		{"version conflict", itinerary.ErrVersionConflict, http.StatusConflict, models.ProblemTypeConflict},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, models.ProblemTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/itineraries/itn_1", nil)

			writeError(w, r, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var p models.Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, tt.typ, p.Type)
		})
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/itineraries:generate", nil)

	writeError(w, r, zerolog.Nop(), itinerary.TripSpec{}.Validate())

	var p models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.NotEmpty(t, p.Errors)
	fields := make([]string, 0, len(p.Errors))
	for _, fe := range p.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "city")
}
