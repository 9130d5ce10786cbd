package models

// CustomDestination is an explicit destination for a class that is not a
// campus building.
type CustomDestination struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng  float64 `json:"lng" validate:"gte=-180,lte=180"`
	Name string  `json:"name,omitempty" validate:"max=120"`
}

// ClassCreateRequest is the request body for creating a schedule class.
// Exactly one of building_id and destination must be set.
type ClassCreateRequest struct {
	Title      string             `json:"title" validate:"required,max=120"`
	Days       []string           `json:"days" validate:"required,min=1,dive,oneof=MON TUE WED THU FRI SAT SUN"`
	StartTime  string             `json:"start_time" validate:"required"`
	EndTime    string             `json:"end_time" validate:"required"`
	BuildingID *string            `json:"building_id,omitempty"`
	Destination *CustomDestination `json:"destination,omitempty"`
}

// Class is a schedule class in API responses.
type Class struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Days        []string           `json:"days"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	BuildingID  *string            `json:"building_id,omitempty"`
	Destination *CustomDestination `json:"destination,omitempty"`
	CreatedAt   Timestamp          `json:"created_at"`
	UpdatedAt   Timestamp          `json:"updated_at"`
}

// ClassList is the schedule listing response.
type ClassList struct {
	Items []Class `json:"items"`
	Count int     `json:"count"`
}
