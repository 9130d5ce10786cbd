package models

// WalkDirections is the walking polyline between two points.
type WalkDirections struct {
	// Coords are [lat, lng] pairs along the route.
	Coords    [][2]float64 `json:"coords"`
	DistanceM float64      `json:"distance_m"`
	DurationS float64      `json:"duration_s"`
	// Fallback is true when the provider was unavailable and the route is
	// the straight segment between the endpoints.
	Fallback bool `json:"fallback"`
}
