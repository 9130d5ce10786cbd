package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/building"
)

const (
	defaultBuildingSearchLimit = 10
	maxBuildingSearchLimit     = 25
)

// BuildingsHandler handles campus building endpoints.
type BuildingsHandler struct {
	buildingService *building.Service
}

// NewBuildingsHandler creates a new BuildingsHandler.
func NewBuildingsHandler(buildingService *building.Service) *BuildingsHandler {
	return &BuildingsHandler{
		buildingService: buildingService,
	}
}

// List handles GET /v1/buildings - all known campus buildings.
func (h *BuildingsHandler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.buildingService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "building lookup failed")
		return
	}

	out := models.BuildingList{Buildings: make([]models.Building, 0, len(found))}
	for _, b := range found {
		out.Buildings = append(out.Buildings, toBuildingModel(*b))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Search handles GET /v1/buildings/search?q=&limit= - scored name search.
func (h *BuildingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "q is required", nil)
		return
	}
	if len(query) > maxQueryLength {
		response.BadRequest(w, r, "q is too long", nil)
		return
	}

	limit := defaultBuildingSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxBuildingSearchLimit {
			response.BadRequest(w, r, "limit must be an integer between 1 and 25", nil)
			return
		}
		limit = parsed
	}

	matches, err := h.buildingService.Search(r.Context(), query, limit)
	if err != nil {
		response.InternalError(w, r, "building search failed")
		return
	}

	out := models.BuildingMatchList{Matches: make([]models.BuildingMatch, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, models.BuildingMatch{
			Building: toBuildingModel(m.Building),
			Score:    m.Score,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

func toBuildingModel(b building.Building) models.Building {
	return models.Building{
		ID:      b.ID,
		Name:    b.Name,
		Aliases: b.Aliases,
		Lat:     b.Lat,
		Lng:     b.Lng,
	}
}
