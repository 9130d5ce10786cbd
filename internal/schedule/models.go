// Package schedule manages the rider's class schedule: recurring classes
// with a meeting time and a destination, used by clients to pre-fill
// recommendation requests.
package schedule

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrClassNotFound = errors.New("class not found")
)

// DefaultUserID owns schedule data until real accounts exist.
const DefaultUserID = "default"

// Class is one recurring class meeting.
type Class struct {
	ID     string
	UserID string
	Title  string

	// Days are three-letter uppercase day codes, MON through SUN.
	Days []string

	// StartTime and EndTime are local times in HH:mm.
	StartTime string
	EndTime   string

	// BuildingID points into the building directory; Custom* describe an
	// off-directory destination. Exactly one of the two forms is set.
	BuildingID *string
	CustomLat  *float64
	CustomLng  *float64
	CustomName *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayCodes are the valid values for Class.Days, week order.
var DayCodes = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}
