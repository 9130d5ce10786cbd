package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/gtfs"
)

var timeOfDayPattern = regexp.MustCompile(`^([0-2]?\d):([0-5]\d)(:[0-5]\d)?$`)

// GTFSHandler handles the static GTFS route-stops endpoint.
type GTFSHandler struct {
	gtfsService *gtfs.Service
}

// NewGTFSHandler creates a new GTFSHandler.
func NewGTFSHandler(gtfsService *gtfs.Service) *GTFSHandler {
	return &GTFSHandler{
		gtfsService: gtfsService,
	}
}

// RouteStops handles GET /v1/gtfs/route-stops?route_id&from_stop_id&
// to_stop_id&after_time - the stops and shape of the first connecting trip.
func (h *GTFSHandler) RouteStops(w http.ResponseWriter, r *http.Request) {
	routeID := strings.TrimSpace(r.URL.Query().Get("route_id"))
	fromStopID := strings.TrimSpace(r.URL.Query().Get("from_stop_id"))
	toStopID := strings.TrimSpace(r.URL.Query().Get("to_stop_id"))
	afterTime := strings.TrimSpace(r.URL.Query().Get("after_time"))

	for name, v := range map[string]string{
		"route_id":     routeID,
		"from_stop_id": fromStopID,
		"to_stop_id":   toStopID,
	} {
		if !stopIDPattern.MatchString(v) {
			response.BadRequest(w, r, "invalid "+name, nil)
			return
		}
	}
	if afterTime != "" && !timeOfDayPattern.MatchString(afterTime) {
		response.BadRequest(w, r, "after_time must be HH:MM or HH:MM:SS", nil)
		return
	}
	if afterTime == "" {
		afterTime = "00:00:00"
	}

	result, err := h.gtfsService.RouteStops(r.Context(), routeID, fromStopID, toStopID, afterTime)
	if err != nil {
		// An absent or stale dataset is served as an empty answer, not an
		// error; clients fall back to straight-line estimates.
		if errors.Is(err, gtfs.ErrNoConnection) {
			response.JSON(w, r, http.StatusOK, models.RouteStops{
				RouteID: routeID,
				Stops:   []models.RouteStop{},
			})
			return
		}
		response.InternalError(w, r, "route-stops lookup failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toRouteStopsModel(result))
}

func toRouteStopsModel(rs *gtfs.RouteStops) models.RouteStops {
	out := models.RouteStops{
		TripID:        rs.Connection.TripID,
		RouteID:       rs.Connection.RouteID,
		RouteName:     rs.Connection.RouteName,
		Headsign:      rs.Connection.Headsign,
		DepartTime:    rs.Connection.DepartTime,
		ArriveTime:    rs.Connection.ArriveTime,
		Stops:         make([]models.RouteStop, 0, len(rs.Stops)),
		ShapePolyline: rs.ShapePolyline,
		ShapeLengthM:  rs.ShapeLengthM,
	}
	for _, s := range rs.Stops {
		out.Stops = append(out.Stops, models.RouteStop{
			StopID:      s.StopID,
			Name:        s.Name,
			Lat:         s.Lat,
			Lng:         s.Lng,
			Sequence:    s.Sequence,
			ArrivalTime: s.ArrivalTime,
		})
	}
	if len(rs.Shape) > 0 {
		out.Shape = make([][2]float64, 0, len(rs.Shape))
		for _, p := range rs.Shape {
			out.Shape = append(out.Shape, [2]float64{p.Lat, p.Lng})
		}
	}
	return out
}
