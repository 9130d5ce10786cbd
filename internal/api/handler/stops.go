package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/stops"
	"github.com/quadroute/quadroute/internal/transit"
)

const (
	defaultNearbyRadiusM = 800.0
	minNearbyRadiusM     = 100.0
	maxNearbyRadiusM     = 5000.0
	nearbyStopLimit      = 10

	defaultDepartureWindowMins = 30
	maxDepartureWindowMins     = 120
)

var stopIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// StopsHandler handles stop discovery and departure board endpoints.
type StopsHandler struct {
	repo           *stops.SQLiteRepository
	transitService *transit.Service
}

// NewStopsHandler creates a new StopsHandler.
func NewStopsHandler(repo *stops.SQLiteRepository, transitService *transit.Service) *StopsHandler {
	return &StopsHandler{
		repo:           repo,
		transitService: transitService,
	}
}

// Nearby handles GET /v1/stops/nearby?lat&lng&radius_m - stops around a
// point, nearest first.
func (h *StopsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, err := parseFloatParam(r, "lat", -90, 90)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	lng, err := parseFloatParam(r, "lng", -180, 180)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	radiusM := defaultNearbyRadiusM
	if raw := r.URL.Query().Get("radius_m"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < minNearbyRadiusM || parsed > maxNearbyRadiusM {
			response.BadRequest(w, r, "radius_m must be between 100 and 5000", nil)
			return
		}
		radiusM = parsed
	}

	found, err := h.repo.Nearby(r.Context(), lat, lng, radiusM, nearbyStopLimit)
	if err != nil {
		response.InternalError(w, r, "stop lookup failed")
		return
	}

	out := models.NearbyStopList{Stops: make([]models.NearbyStop, 0, len(found))}
	for _, s := range found {
		out.Stops = append(out.Stops, models.NearbyStop{
			ID:        s.ID,
			Code:      s.Code,
			Name:      s.Name,
			Lat:       s.Lat,
			Lng:       s.Lng,
			DistanceM: s.DistanceM,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Departures handles GET /v1/stops/{stopID}/departures?minutes= - the
// upcoming departure board for one stop.
func (h *StopsHandler) Departures(w http.ResponseWriter, r *http.Request) {
	stopID := chi.URLParam(r, "stopID")
	if !stopIDPattern.MatchString(stopID) {
		response.BadRequest(w, r, "invalid stop ID", nil)
		return
	}

	minutes := defaultDepartureWindowMins
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDepartureWindowMins {
			response.BadRequest(w, r, "minutes must be an integer between 1 and 120", nil)
			return
		}
		minutes = parsed
	}

	departures, err := h.transitService.Departures(r.Context(), stopID, minutes)
	if err != nil {
		if errors.Is(err, transit.ErrProviderUnavailable) {
			response.BadGateway(w, r, "departure feed unavailable")
			return
		}
		response.InternalError(w, r, "departure lookup failed")
		return
	}

	board := models.DepartureBoard{
		StopID:     stopID,
		Departures: make([]models.Departure, 0, len(departures)),
	}
	for _, d := range departures {
		board.Departures = append(board.Departures, toDepartureModel(d))
	}
	response.JSON(w, r, http.StatusOK, board)
}

func toDepartureModel(d transit.Departure) models.Departure {
	out := models.Departure{
		StopID:       d.StopID,
		Route:        d.Route,
		Headsign:     d.Headsign,
		ExpectedMins: d.ExpectedMins,
		Realtime:     d.Realtime,
		VehicleID:    d.VehicleID,
	}
	if d.ExpectedAt != nil {
		ts := models.Timestamp(*d.ExpectedAt)
		out.ExpectedAt = &ts
	}
	return out
}
