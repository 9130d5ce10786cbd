package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quadroute/quadroute/internal/ai"
	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/recommend"
)

// Recommendation defaults applied when the request leaves a field unset.
const (
	defaultWalkingSpeedMPS = 1.4
	defaultBufferMinutes   = 5.0
	defaultMaxOptions      = 3
)

// RecommendationHandler handles the travel option compute endpoint.
type RecommendationHandler struct {
	recommendService *recommend.Service
	ranker           *ai.Ranker
}

// NewRecommendationHandler creates a new RecommendationHandler. The ranker
// may be nil; options are then returned in engine order.
func NewRecommendationHandler(recommendService *recommend.Service, ranker *ai.Ranker) *RecommendationHandler {
	return &RecommendationHandler{
		recommendService: recommendService,
		ranker:           ranker,
	}
}

// Compute handles POST /v1/recommendations:compute - ranked WALK and BUS
// options to a campus destination.
func (h *RecommendationHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var input models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := validateStruct(&input); errs != nil {
		response.BadRequest(w, r, "validation error", errs)
		return
	}
	if input.DestinationBuildingID == "" && input.Destination == nil {
		response.BadRequest(w, r, "destination_building_id or destination is required", nil)
		return
	}

	req := recommend.Request{
		Lat:                   input.Lat,
		Lng:                   input.Lng,
		DestinationBuildingID: input.DestinationBuildingID,
		ArriveBy:              input.ArriveBy,
		WalkingSpeedMPS:       defaultWalkingSpeedMPS,
		BufferMinutes:         defaultBufferMinutes,
		MaxOptions:            defaultMaxOptions,
	}
	if input.Destination != nil {
		req.DestinationLat = &input.Destination.Lat
		req.DestinationLng = &input.Destination.Lng
		req.DestinationName = input.Destination.Name
	}
	if input.WalkingSpeedMPS != nil {
		req.WalkingSpeedMPS = *input.WalkingSpeedMPS
	}
	if input.BufferMinutes != nil {
		req.BufferMinutes = *input.BufferMinutes
	}
	if input.MaxOptions != nil {
		req.MaxOptions = *input.MaxOptions
	}

	options, err := h.recommendService.Recommend(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidArriveBy):
			response.BadRequest(w, r, "arrive_by must be an ISO-8601 timestamp", nil)
		case errors.Is(err, recommend.ErrBuildingNotFound):
			response.BadRequest(w, r, "unknown destination building", nil)
		case errors.Is(err, recommend.ErrMissingDestination):
			response.BadRequest(w, r, "destination_building_id or destination is required", nil)
		default:
			response.InternalError(w, r, "recommendation failed")
		}
		return
	}

	if h.ranker != nil {
		origin := originLabel(input.Lat, input.Lng)
		options = h.ranker.Rank(r.Context(), origin, destinationLabel(input), options)
	}

	out := models.RecommendationResponse{
		Options:     make([]models.TravelOption, 0, len(options)),
		GeneratedAt: models.Timestamp(time.Now()),
	}
	for _, opt := range options {
		out.Options = append(out.Options, toTravelOption(opt))
	}
	response.JSON(w, r, http.StatusOK, out)
}

func originLabel(lat, lng float64) string {
	return "rider at (" + formatCoord(lat) + ", " + formatCoord(lng) + ")"
}

func destinationLabel(input models.RecommendationRequest) string {
	if input.Destination != nil && input.Destination.Name != "" {
		return input.Destination.Name
	}
	if input.DestinationBuildingID != "" {
		return input.DestinationBuildingID
	}
	return "destination"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func toTravelOption(opt recommend.Option) models.TravelOption {
	out := models.TravelOption{
		Type:            string(opt.Type),
		Summary:         opt.Summary,
		ETAMinutes:      opt.ETAMinutes,
		DepartInMinutes: opt.DepartInMinutes,
		Steps:           make([]models.TravelStep, 0, len(opt.Steps)),
		AIExplanation:   opt.AIExplanation,
		AIRanked:        opt.AIRanked,
	}
	for _, step := range opt.Steps {
		out.Steps = append(out.Steps, toTravelStep(step))
	}
	return out
}

func toTravelStep(step recommend.Step) models.TravelStep {
	out := models.TravelStep{
		Type:            string(step.Type),
		DurationMinutes: step.DurationMinutes,
		Route:           step.Route,
		Headsign:        step.Headsign,
		BuildingID:      step.BuildingID,
	}
	if step.Stop != nil {
		out.Stop = toStopRef(*step.Stop)
	}
	if step.AlightingStop != nil {
		out.AlightingStop = toStopRef(*step.AlightingStop)
	}
	if step.Type == recommend.StepWalkToDest {
		out.Destination = &models.Point{Lat: step.DestLat, Lng: step.DestLng}
	}
	return out
}

func toStopRef(s recommend.Stop) *models.StopRef {
	return &models.StopRef{
		ID:   s.ID,
		Name: s.Name,
		Lat:  s.Lat,
		Lng:  s.Lng,
	}
}
