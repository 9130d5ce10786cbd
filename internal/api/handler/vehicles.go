package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/transit"
)

// VehiclesHandler handles the vehicle positions endpoint.
type VehiclesHandler struct {
	transitService *transit.Service
}

// NewVehiclesHandler creates a new VehiclesHandler.
func NewVehiclesHandler(transitService *transit.Service) *VehiclesHandler {
	return &VehiclesHandler{
		transitService: transitService,
	}
}

// List handles GET /v1/vehicles?route_id= - tracked vehicle positions,
// optionally filtered to one route.
func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	routeID := strings.TrimSpace(r.URL.Query().Get("route_id"))
	if len(routeID) > 64 {
		response.BadRequest(w, r, "invalid route_id", nil)
		return
	}

	vehicles, err := h.transitService.Vehicles(r.Context(), routeID)
	if err != nil {
		if errors.Is(err, transit.ErrProviderUnavailable) {
			response.BadGateway(w, r, "vehicle feed unavailable")
			return
		}
		response.InternalError(w, r, "vehicle lookup failed")
		return
	}

	out := models.VehicleList{Vehicles: make([]models.Vehicle, 0, len(vehicles))}
	for _, v := range vehicles {
		out.Vehicles = append(out.Vehicles, models.Vehicle{
			ID:        v.ID,
			RouteID:   v.RouteID,
			TripID:    v.TripID,
			Headsign:  v.Headsign,
			Lat:       v.Lat,
			Lng:       v.Lng,
			Heading:   v.Heading,
			UpdatedAt: models.Timestamp(v.UpdatedAt),
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}
