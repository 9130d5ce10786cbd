// Package recommend computes ranked WALK and BUS travel options from a
// rider's position to a campus destination. The engine is pure computation:
// all data access goes through an injected DataProvider, which keeps it
// unit-testable without any network or database dependency.
package recommend

import (
	"context"
	"errors"
	"time"
)

// Recommendation errors.
var (
	// ErrInvalidArriveBy indicates the arrival deadline was missing or unparsable.
	ErrInvalidArriveBy = errors.New("invalid arrive-by time")
	// ErrBuildingNotFound indicates the destination building ID does not exist.
	ErrBuildingNotFound = errors.New("building not found")
	// ErrMissingDestination indicates neither a building ID nor explicit
	// destination coordinates were provided.
	ErrMissingDestination = errors.New("missing destination")
)

// Coordinate is a geographic point in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Building is a resolved campus destination.
type Building struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
}

// Stop is an immutable snapshot of a transit stop from the stop locator.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
}

// Departure is one upcoming vehicle arrival at a stop, supplied fresh per
// call by the departure board provider.
type Departure struct {
	// Route is the route label (e.g. "5").
	Route string
	// Headsign is the destination label shown on the vehicle.
	Headsign string
	// ExpectedMins is minutes until the vehicle is expected at the stop.
	ExpectedMins int
	// Realtime is true when the estimate comes from vehicle tracking rather
	// than the static schedule.
	Realtime bool
	// ExpectedAt is the absolute expected time, when the feed provides one.
	ExpectedAt *time.Time
}

// DataProvider supplies the three capabilities the recommendation flow
// needs. Implementations must degrade to empty results on upstream failure;
// the engine has no retry or fallback logic of its own.
type DataProvider interface {
	// Building resolves a building ID to coordinates and a display name.
	// Returns (nil, nil) when the building does not exist.
	Building(ctx context.Context, id string) (*Building, error)

	// NearbyStops returns up to limit stops within radiusM meters of the
	// point, nearest first.
	NearbyStops(ctx context.Context, lat, lng, radiusM float64, limit int) ([]Stop, error)

	// Departures returns the upcoming departure board for a stop.
	Departures(ctx context.Context, stopID string) ([]Departure, error)
}

// StepType identifies one leg variant within an Option.
type StepType string

// Step variants, in the order they appear in a BUS option.
const (
	StepWalkToStop StepType = "WALK_TO_STOP"
	StepWait       StepType = "WAIT"
	StepRide       StepType = "RIDE"
	StepWalkToDest StepType = "WALK_TO_DEST"
)

// Step is one leg of an Option. Only the fields relevant to the step type
// are populated.
type Step struct {
	Type            StepType
	DurationMinutes float64

	// Stop is the boarding stop for WALK_TO_STOP and WAIT steps, and the
	// boarding stop of a RIDE step.
	Stop *Stop

	// RIDE fields.
	Route         string
	Headsign      string
	AlightingStop *Stop

	// WALK_TO_DEST fields.
	BuildingID string
	DestLat    float64
	DestLng    float64
}

// OptionType is the travel mode of an Option.
type OptionType string

// Option types.
const (
	OptionWalk OptionType = "WALK"
	OptionBus  OptionType = "BUS"
)

// Option is one complete proposed way to get from the rider to the
// destination. Constructed fresh per request and never persisted.
type Option struct {
	Type    OptionType
	Summary string

	// ETAMinutes is the total travel time from "depart now" to arrival.
	ETAMinutes float64

	// DepartInMinutes is how long the rider can wait before leaving and
	// still make the deadline with the safety buffer.
	DepartInMinutes float64

	// Steps are ordered start-to-finish; their durations sum to ETAMinutes.
	Steps []Step

	// AIExplanation and AIRanked are set by the optional ranking annotator.
	// They are best-effort and absent when annotation is disabled or fails.
	AIExplanation string
	AIRanked      bool
}

// Input carries everything Compute needs. Now is injected rather than read
// from the system clock so results are deterministic and testable.
type Input struct {
	Rider                 Coordinate
	Destination           Coordinate
	DestinationName       string
	DestinationBuildingID string

	// ArriveBy is the absolute arrival deadline. A zero value is an
	// invalid-input failure; parsing happens upstream.
	ArriveBy time.Time

	// WalkingSpeedMPS is the rider's walking speed in meters/second.
	// Small positive values are clamped up to a sane minimum; values <= 0
	// make every walk leg unbounded, which excludes the affected options.
	WalkingSpeedMPS float64

	// BufferMinutes is the safety margin subtracted from the time budget.
	BufferMinutes float64

	// MaxOptions caps the returned list length (clamped to 1..10).
	MaxOptions int

	// Now is the evaluation instant.
	Now time.Time
}
