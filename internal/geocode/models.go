// Package geocode resolves place names and addresses to coordinates with
// long-lived result caching in front of the upstream geocoder.
package geocode

import (
	"context"
	"errors"
)

// Geocoding errors.
var (
	ErrNoResults           = errors.New("no geocoding results")
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Place is one geocoding result.
type Place struct {
	// Name is the short place name (first component of the display name).
	Name string

	// DisplayName is the full formatted address.
	DisplayName string

	Lat float64
	Lng float64
}

// Provider performs forward geocoding against an upstream service.
type Provider interface {
	// Search returns up to limit places matching the query. When bounded is
	// true, results are restricted to the campus viewbox.
	Search(ctx context.Context, query string, limit int, bounded bool) ([]Place, error)

	// Name returns the provider name for logging.
	Name() string
}
