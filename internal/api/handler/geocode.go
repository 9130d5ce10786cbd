package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/geocode"
)

const (
	defaultSuggestionLimit = 8
	maxSuggestionLimit     = 10
	maxQueryLength         = 200
)

// GeocodeHandler handles geocoding and autocomplete endpoints.
type GeocodeHandler struct {
	geocodeService  *geocode.Service
	buildingService *building.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocodeService *geocode.Service, buildingService *building.Service) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService:  geocodeService,
		buildingService: buildingService,
	}
}

// Geocode handles GET /v1/geocode?q= - resolve a free-text query to a single
// best coordinate.
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "q is required", nil)
		return
	}
	if len(query) > maxQueryLength {
		response.BadRequest(w, r, "q is too long", nil)
		return
	}

	place, err := h.geocodeService.Geocode(r.Context(), query)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			response.NotFound(w, r, "no results for query")
			return
		}
		response.BadGateway(w, r, "geocoding provider unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.Place{
		Name:        place.Name,
		DisplayName: place.DisplayName,
		Lat:         place.Lat,
		Lng:         place.Lng,
	})
}

// Autocomplete handles GET /v1/autocomplete?q=&limit= - campus building
// matches first, geocoded places as backfill.
func (h *GeocodeHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "q is required", nil)
		return
	}
	if len(query) > maxQueryLength {
		response.BadRequest(w, r, "q is too long", nil)
		return
	}

	limit := defaultSuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSuggestionLimit {
			response.BadRequest(w, r, "limit must be an integer between 1 and 10", nil)
			return
		}
		limit = parsed
	}

	suggestions := make([]models.Suggestion, 0, limit)

	matches, err := h.buildingService.Search(r.Context(), query, limit)
	if err == nil {
		for _, m := range matches {
			suggestions = append(suggestions, models.Suggestion{
				Name:       m.Building.Name,
				Lat:        m.Building.Lat,
				Lng:        m.Building.Lng,
				BuildingID: m.Building.ID,
				Source:     "building",
			})
		}
	}

	if remaining := limit - len(suggestions); remaining > 0 {
		for _, p := range h.geocodeService.Suggest(r.Context(), query, remaining) {
			suggestions = append(suggestions, models.Suggestion{
				Name:   p.Name,
				Detail: p.DisplayName,
				Lat:    p.Lat,
				Lng:    p.Lng,
				Source: "geocode",
			})
		}
	}

	response.JSON(w, r, http.StatusOK, models.SuggestionList{Suggestions: suggestions})
}
