package handler

import (
	"net/http"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/directions"
)

// DirectionsHandler handles the walking directions endpoint.
type DirectionsHandler struct {
	directionsService *directions.Service
}

// NewDirectionsHandler creates a new DirectionsHandler.
func NewDirectionsHandler(directionsService *directions.Service) *DirectionsHandler {
	return &DirectionsHandler{
		directionsService: directionsService,
	}
}

// Walk handles GET /v1/directions/walk?orig_lat&orig_lng&dest_lat&dest_lng -
// a walking polyline between two points. Falls back to the straight segment
// when the routing provider is unavailable.
func (h *DirectionsHandler) Walk(w http.ResponseWriter, r *http.Request) {
	origLat, err := parseFloatParam(r, "orig_lat", -90, 90)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	origLng, err := parseFloatParam(r, "orig_lng", -180, 180)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	destLat, err := parseFloatParam(r, "dest_lat", -90, 90)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	destLng, err := parseFloatParam(r, "dest_lng", -180, 180)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	route := h.directionsService.Walk(r.Context(), origLat, origLng, destLat, destLng)

	out := models.WalkDirections{
		Coords:    make([][2]float64, 0, len(route.Coords)),
		DistanceM: route.DistanceM,
		DurationS: route.DurationS,
		Fallback:  route.Fallback,
	}
	for _, c := range route.Coords {
		out.Coords = append(out.Coords, [2]float64{c.Lat, c.Lng})
	}
	response.JSON(w, r, http.StatusOK, out)
}
