// Package directions provides walking route geometry between two points,
// proxied from an upstream router with short result caching.
package directions

import (
	"context"
	"errors"

	"github.com/quadroute/quadroute/pkg/polyline"
)

// Directions errors.
var (
	ErrNoRoute = errors.New("no route found")
)

// WalkRoute is the geometry of one walking route.
type WalkRoute struct {
	// Coords is the route geometry, origin first.
	Coords []polyline.Coordinate

	// DistanceM is the route distance in meters, when the router reports it.
	DistanceM float64

	// DurationS is the walking duration in seconds, when reported.
	DurationS float64

	// Fallback is true when the router was unavailable and the route
	// degraded to a straight line between the endpoints.
	Fallback bool
}

// Provider computes walking routes against an upstream routing engine.
type Provider interface {
	// WalkRoute returns the walking route from origin to destination.
	WalkRoute(ctx context.Context, origLat, origLng, destLat, destLng float64) (*WalkRoute, error)

	// Name returns the provider name for logging.
	Name() string
}
