package handler

import (
	"net/http"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/response"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	enums models.Enums
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	enums := models.Enums{
		Categories: append([]string(nil), catalog.Categories...),
	}
	for _, p := range itinerary.Paces {
		enums.Paces = append(enums.Paces, string(p))
	}
	for _, b := range itinerary.BudgetTiers {
		enums.BudgetTiers = append(enums.BudgetTiers, string(b))
	}
	for _, c := range optimizer.Criteria {
		enums.Criteria = append(enums.Criteria, string(c))
	}
	for _, c := range catalog.Cities() {
		enums.Cities = append(enums.Cities, models.City{Key: c.Key, Name: c.Name})
	}
	return &MetadataHandler{enums: enums}
}

// GetEnums handles GET /v1/metadata/enums - enum values accepted by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, h.enums)
}
