// Package gtfs provides read access to the static GTFS dataset (routes,
// trips, stop times, shapes) loaded into SQLite, and composes connecting-trip
// answers for the route-stops endpoint.
package gtfs

import "errors"

// Service errors.
var (
	ErrNoConnection = errors.New("no connecting trip found")
)

// Route is one GTFS route.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Color     string
}

// Trip is one GTFS trip.
type Trip struct {
	ID       string
	RouteID  string
	Headsign string
	ShapeID  string
}

// StopTime is one scheduled stop of a trip. Times are zero-padded HH:MM:SS
// strings as in the feed; values past midnight (e.g. 25:10:00) sort
// correctly as text.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
}

// ShapePoint is one vertex of a trip's shape polyline.
type ShapePoint struct {
	ShapeID  string
	Lat      float64
	Lng      float64
	Sequence int
}

// Connection is a single trip that visits an origin stop and later a
// destination stop.
type Connection struct {
	TripID     string
	RouteID    string
	RouteName  string
	Headsign   string
	DepartTime string
	ArriveTime string
	FromSeq    int
	ToSeq      int
}

// TripStop is one stop visited by a trip, in sequence order.
type TripStop struct {
	StopID      string
	Name        string
	Lat         float64
	Lng         float64
	Sequence    int
	ArrivalTime string
}

// RouteStops is the composed answer for the route-stops endpoint: the first
// connecting trip after the requested time, the stops it visits between the
// two endpoints, and the trip shape.
type RouteStops struct {
	Connection Connection
	Stops      []TripStop
	Shape      []ShapePoint
	// ShapePolyline is the encoded shape; empty when no shape exists.
	ShapePolyline string
	// ShapeLengthM is the shape length in meters.
	ShapeLengthM float64
}
