package schedule

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/quadroute/quadroute/internal/api/models"
)

// Validation constants.
const (
	MaxTitleLength = 120
	MaxNameLength  = 120
)

// timeHHMMRegex validates HH:mm local times.
var timeHHMMRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Service provides schedule operations for the default user.
type Service struct {
	repo Repository
}

// NewService creates a new schedule service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all classes.
func (s *Service) List(ctx context.Context) (*models.ClassList, error) {
	classes, err := s.repo.List(ctx, DefaultUserID)
	if err != nil {
		return nil, err
	}

	items := make([]models.Class, 0, len(classes))
	for _, c := range classes {
		items = append(items, toAPIClass(c))
	}

	return &models.ClassList{Items: items, Count: len(items)}, nil
}

// Create validates and creates a new class.
func (s *Service) Create(ctx context.Context, input *models.ClassCreateRequest) (*models.Class, error) {
	if fieldErrors := validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	class := &Class{
		ID:        "cls_" + uuid.New().String()[:22],
		UserID:    DefaultUserID,
		Title:     input.Title,
		Days:      normalizeDays(input.Days),
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.BuildingID != nil {
		class.BuildingID = input.BuildingID
	} else if input.Destination != nil {
		class.CustomLat = &input.Destination.Lat
		class.CustomLng = &input.Destination.Lng
		if input.Destination.Name != "" {
			name := input.Destination.Name
			class.CustomName = &name
		}
	}

	if err := s.repo.Create(ctx, class); err != nil {
		return nil, err
	}

	result := toAPIClass(class)
	return &result, nil
}

// Delete removes a class.
func (s *Service) Delete(ctx context.Context, classID string) error {
	return s.repo.Delete(ctx, DefaultUserID, classID)
}

// validateCreateInput validates the create class input.
func validateCreateInput(input *models.ClassCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "is required"})
	} else if len(input.Title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
	}

	if len(input.Days) == 0 {
		errs = append(errs, models.FieldError{Field: "days", Message: "is required"})
	} else {
		for _, day := range input.Days {
			if !isDayCode(day) {
				errs = append(errs, models.FieldError{Field: "days", Message: "must contain values MON through SUN"})
				break
			}
		}
	}

	startOK := validateTime(&errs, "start_time", input.StartTime)
	endOK := validateTime(&errs, "end_time", input.EndTime)
	if startOK && endOK && minutesOfDay(input.EndTime) <= minutesOfDay(input.StartTime) {
		errs = append(errs, models.FieldError{Field: "end_time", Message: "must be after start_time"})
	}

	switch {
	case input.BuildingID != nil && input.Destination != nil:
		errs = append(errs, models.FieldError{Field: "building_id", Message: "cannot be combined with destination"})
	case input.BuildingID == nil && input.Destination == nil:
		errs = append(errs, models.FieldError{Field: "building_id", Message: "either building_id or destination is required"})
	case input.Destination != nil:
		if input.Destination.Lat < -90 || input.Destination.Lat > 90 {
			errs = append(errs, models.FieldError{Field: "destination.lat", Message: "must be between -90 and 90"})
		}
		if input.Destination.Lng < -180 || input.Destination.Lng > 180 {
			errs = append(errs, models.FieldError{Field: "destination.lng", Message: "must be between -180 and 180"})
		}
		if len(input.Destination.Name) > MaxNameLength {
			errs = append(errs, models.FieldError{Field: "destination.name", Message: "must be at most 120 characters"})
		}
	}

	return errs
}

func validateTime(errs *[]models.FieldError, field, value string) bool {
	if value == "" {
		*errs = append(*errs, models.FieldError{Field: field, Message: "is required"})
		return false
	}
	if !timeHHMMRegex.MatchString(value) {
		*errs = append(*errs, models.FieldError{Field: field, Message: "must be in HH:mm format"})
		return false
	}
	return true
}

// minutesOfDay converts a validated HH:mm string to minutes since midnight.
func minutesOfDay(hhmm string) int {
	t, err := time.Parse("15:04", padTime(hhmm))
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// padTime zero-pads single-digit hours so "9:30" parses as "09:30".
func padTime(hhmm string) string {
	if len(hhmm) == 4 {
		return "0" + hhmm
	}
	return hhmm
}

func isDayCode(day string) bool {
	for _, d := range DayCodes {
		if d == day {
			return true
		}
	}
	return false
}

// normalizeDays deduplicates day codes and orders them MON..SUN.
func normalizeDays(days []string) []string {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}

	out := make([]string, 0, len(seen))
	for _, d := range DayCodes {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// toAPIClass converts a domain Class to an API Class.
func toAPIClass(c *Class) models.Class {
	out := models.Class{
		ID:         c.ID,
		Title:      c.Title,
		Days:       c.Days,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		BuildingID: c.BuildingID,
		CreatedAt:  models.Timestamp(c.CreatedAt),
		UpdatedAt:  models.Timestamp(c.UpdatedAt),
	}

	if c.CustomLat != nil && c.CustomLng != nil {
		dest := &models.CustomDestination{Lat: *c.CustomLat, Lng: *c.CustomLng}
		if c.CustomName != nil {
			dest.Name = *c.CustomName
		}
		out.Destination = dest
	}

	return out
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
