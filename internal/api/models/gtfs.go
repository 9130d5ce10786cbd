package models

// RouteStops is the response for the route-stops endpoint: the first trip on
// the route that connects the two stops after the requested time, the stops
// it visits between them, and the trip shape.
type RouteStops struct {
	TripID     string      `json:"trip_id"`
	RouteID    string      `json:"route_id"`
	RouteName  string      `json:"route_name,omitempty"`
	Headsign   string      `json:"headsign,omitempty"`
	DepartTime string      `json:"depart_time"`
	ArriveTime string      `json:"arrive_time"`
	Stops      []RouteStop `json:"stops"`

	// Shape is [lat, lng] pairs; empty when the trip has no shape.
	Shape         [][2]float64 `json:"shape,omitempty"`
	ShapePolyline string       `json:"shape_polyline,omitempty"`
	ShapeLengthM  float64      `json:"shape_length_m,omitempty"`
}

// RouteStop is one stop visited by the connecting trip, in sequence order.
type RouteStop struct {
	StopID      string  `json:"stop_id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Sequence    int     `json:"sequence"`
	ArrivalTime string  `json:"arrival_time,omitempty"`
}
