// Package transit provides live departure boards and vehicle positions with
// short TTL caching in front of the upstream feeds.
package transit

import (
	"context"
	"errors"
	"time"
)

// Transit errors.
var (
	ErrProviderUnavailable = errors.New("transit provider unavailable")
)

// Departure represents one upcoming vehicle arrival at a stop.
type Departure struct {
	// StopID is the stop the departure was fetched for.
	StopID string

	// Route is the rider-facing route label (e.g. "5W").
	Route string

	// Headsign is the destination label shown on the vehicle.
	Headsign string

	// ExpectedMins is minutes until the vehicle is expected at the stop.
	ExpectedMins int

	// Realtime indicates the estimate comes from vehicle tracking rather
	// than the static schedule.
	Realtime bool

	// ExpectedAt is the absolute expected time, when the feed provides one.
	ExpectedAt *time.Time

	// VehicleID identifies the tracked vehicle, when known.
	VehicleID string
}

// Vehicle represents one tracked vehicle position.
type Vehicle struct {
	// ID is the vehicle identifier from the feed.
	ID string

	// RouteID is the route the vehicle is serving.
	RouteID string

	// TripID is the trip the vehicle is serving, when known.
	TripID string

	// Headsign is the destination label, when known.
	Headsign string

	// Lat/Lng is the last reported position.
	Lat float64
	Lng float64

	// Heading is the compass heading in degrees, when reported.
	Heading float64

	// UpdatedAt is the feed's position timestamp.
	UpdatedAt time.Time
}

// DepartureProvider fetches departure boards from an upstream feed.
type DepartureProvider interface {
	// GetDeparturesByStop returns departures at a stop expected within the
	// next windowMins minutes.
	GetDeparturesByStop(ctx context.Context, stopID string, windowMins int) ([]Departure, error)

	// Name returns the provider name for logging.
	Name() string
}

// VehicleProvider fetches live vehicle positions from an upstream feed.
type VehicleProvider interface {
	// GetVehicles returns all currently tracked vehicles.
	GetVehicles(ctx context.Context) ([]Vehicle, error)

	// Name returns the provider name for logging.
	Name() string
}
