package models

// NearbyStop is one transit stop in a proximity query result.
type NearbyStop struct {
	ID        string  `json:"id"`
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	DistanceM float64 `json:"distance_m"`
}

// NearbyStopList is the response for the nearby stops endpoint.
type NearbyStopList struct {
	Stops []NearbyStop `json:"stops"`
}

// Departure is one upcoming vehicle arrival at a stop.
type Departure struct {
	StopID       string     `json:"stop_id"`
	Route        string     `json:"route"`
	Headsign     string     `json:"headsign"`
	ExpectedMins int        `json:"expected_mins"`
	Realtime     bool       `json:"realtime"`
	ExpectedAt   *Timestamp `json:"expected_at,omitempty"`
	VehicleID    string     `json:"vehicle_id,omitempty"`
}

// DepartureBoard is the response for the stop departures endpoint.
type DepartureBoard struct {
	StopID     string      `json:"stop_id"`
	Departures []Departure `json:"departures"`
}

// Vehicle is one tracked transit vehicle position.
type Vehicle struct {
	ID        string    `json:"id"`
	RouteID   string    `json:"route_id"`
	TripID    string    `json:"trip_id,omitempty"`
	Headsign  string    `json:"headsign,omitempty"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Heading   float64   `json:"heading"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// VehicleList is the response for the vehicles endpoint.
type VehicleList struct {
	Vehicles []Vehicle `json:"vehicles"`
}
