package models

// RecommendationRequest is the request body for computing travel options.
// Exactly one of destination_building_id and destination must be set; when
// both are present the explicit destination wins.
type RecommendationRequest struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"required,gte=-180,lte=180"`

	DestinationBuildingID string           `json:"destination_building_id,omitempty" validate:"omitempty,max=64"`
	Destination           *DestinationSpec `json:"destination,omitempty"`

	// ArriveBy is the ISO-8601 arrival deadline.
	ArriveBy string `json:"arrive_by" validate:"required"`

	WalkingSpeedMPS *float64 `json:"walking_speed_mps,omitempty" validate:"omitempty,gte=0.1,lte=3.0"`
	BufferMinutes   *float64 `json:"buffer_minutes,omitempty" validate:"omitempty,gte=0,lte=60"`
	MaxOptions      *int     `json:"max_options,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// DestinationSpec is an explicit destination coordinate with an optional
// display name.
type DestinationSpec struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng  float64 `json:"lng" validate:"gte=-180,lte=180"`
	Name string  `json:"name,omitempty" validate:"max=120"`
}

// RecommendationResponse is the ranked option list for one request.
type RecommendationResponse struct {
	Options     []TravelOption `json:"options"`
	GeneratedAt Timestamp      `json:"generated_at"`
}

// TravelOption is one proposed way to reach the destination.
type TravelOption struct {
	Type            string       `json:"type"`
	Summary         string       `json:"summary"`
	ETAMinutes      float64      `json:"eta_minutes"`
	DepartInMinutes float64      `json:"depart_in_minutes"`
	Steps           []TravelStep `json:"steps"`
	AIExplanation   string       `json:"ai_explanation,omitempty"`
	AIRanked        bool         `json:"ai_ranked,omitempty"`
}

// TravelStep is one leg of a TravelOption. Fields not relevant to the step
// type are omitted.
type TravelStep struct {
	Type            string  `json:"type"`
	DurationMinutes float64 `json:"duration_minutes"`

	Stop *StopRef `json:"stop,omitempty"`

	Route         string   `json:"route,omitempty"`
	Headsign      string   `json:"headsign,omitempty"`
	AlightingStop *StopRef `json:"alighting_stop,omitempty"`

	BuildingID  string `json:"building_id,omitempty"`
	Destination *Point `json:"destination,omitempty"`
}

// StopRef identifies a transit stop inside a travel step.
type StopRef struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
