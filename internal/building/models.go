// Package building provides the campus building directory: lookup by ID,
// listing, and token-scored name search used by destination resolution and
// autocomplete.
package building

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrBuildingNotFound = errors.New("building not found")
)

// Building is one campus building with its canonical name and the alternate
// names students actually use.
type Building struct {
	ID        string
	Name      string
	Aliases   []string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Match is a search hit with its relevance score.
type Match struct {
	Building Building
	Score    int
}
