// Package stops provides read access to the transit stop dataset loaded
// from GTFS stops.txt into SQLite.
package stops

import "errors"

// Repository errors.
var (
	ErrStopNotFound = errors.New("stop not found")
)

// Stop is one transit stop.
type Stop struct {
	ID   string
	Code string
	Name string
	Lat  float64
	Lng  float64

	// DistanceM is filled in by proximity queries.
	DistanceM float64
}
