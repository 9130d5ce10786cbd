package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/schedule"
)

// ScheduleHandler handles schedule class endpoints.
type ScheduleHandler struct {
	scheduleService *schedule.Service
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

// List handles GET /v1/schedule/classes - all saved classes.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.scheduleService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "schedule lookup failed")
		return
	}
	response.JSON(w, r, http.StatusOK, classes)
}

// Create handles POST /v1/schedule/classes - save a new class.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ClassCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := validateStruct(&input); errs != nil {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	class, err := h.scheduleService.Create(r.Context(), &input)
	if err != nil {
		var verr *schedule.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, r, "validation error", verr.Errors)
			return
		}
		response.InternalError(w, r, "class creation failed")
		return
	}

	location := fmt.Sprintf("/v1/schedule/classes/%s", class.ID)
	response.Created(w, r, location, class)
}

// Delete handles DELETE /v1/schedule/classes/{classID} - remove a class.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if classID == "" {
		response.BadRequest(w, r, "classID is required", nil)
		return
	}

	if err := h.scheduleService.Delete(r.Context(), classID); err != nil {
		if errors.Is(err, schedule.ErrClassNotFound) {
			response.NotFound(w, r, "class not found")
			return
		}
		response.InternalError(w, r, "class deletion failed")
		return
	}

	response.NoContent(w, r)
}
