// Package worker provides background job processing for QuadRoute.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the cache warm jobs.
type RefreshConfig struct {
	// StopIDs are the high-traffic stops whose departure boards get warmed.
	// If empty, uses DefaultRefreshStopIDs.
	StopIDs []string

	// DepartureWindowMins is the departure board window to warm.
	// Default: 30
	DepartureWindowMins int

	// Concurrency is the number of concurrent warm operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each warm operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshDepartures enables departure board warming.
	// Default: true
	RefreshDepartures bool

	// RefreshVehicles enables vehicle position warming.
	// Default: true
	RefreshVehicles bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		StopIDs:             DefaultRefreshStopIDs(),
		DepartureWindowMins: 30,
		Concurrency:         3,
		Timeout:             30 * time.Second,
		RefreshDepartures:   true,
		RefreshVehicles:     true,
	}
}

// DefaultRefreshStopIDs returns the campus stops worth keeping warm. These
// are the boarding points that dominate recommendation traffic between
// classes.
func DefaultRefreshStopIDs() []string {
	return []string{
		"IU",      // Illini Union
		"TRANSIT", // Transit Plaza
		"PAR",     // Pennsylvania Avenue Residence Halls
		"ISR",     // Illinois Street Residence Halls
		"IKNBRY",  // Ikenberry Commons
		"WRTGRN",  // Wright & Green
		"GRN4TH",  // Green & Fourth
		"ARY",     // Armory
		"GWNDLN",  // Goodwin & Nevada
		"LNCLNSQ", // Lincoln Square
	}
}

// TotalStops returns the number of stops to warm.
func (c RefreshConfig) TotalStops() int {
	return len(c.StopIDs)
}
